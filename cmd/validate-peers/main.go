package main

import (
	"fmt"
	"os"

	"github.com/chanpulse/chanpulse/internal/config"
)

// Checks peer list files before deploying them. With no arguments the
// default ./peers.yaml is checked.
func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{"./peers.yaml"}
	}

	failed := false
	for _, path := range paths {
		peers, err := config.LoadPeers(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}
		if err := config.Validate(peers); err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: ok, %d peer(s)\n", path, len(peers))
		for _, p := range peers {
			if p.Column != "" {
				fmt.Printf("  @%s (column %s)\n", p.Username(), p.Column)
			} else {
				fmt.Printf("  @%s\n", p.Username())
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}
