package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Peer is one channel or supergroup to collect statistics for.
type Peer struct {
	// Ref is the peer reference: a public username, with or without
	// the @ prefix.
	Ref string `yaml:"ref"`

	// Column optionally names the chart column to materialize when a
	// graph carries several series (e.g. "y1"). Empty means the first
	// data column.
	Column string `yaml:"column,omitempty"`
}

// peersFile is the on-disk shape of the peer list.
type peersFile struct {
	Peers []Peer `yaml:"peers"`
}

// ErrNoPeers is returned by Validate when the loaded list is empty.
var ErrNoPeers = errors.New("peer list is empty")

// LoadPeers reads the peer list from a YAML file.
// A missing file is not an error: the operator may not have curated a
// list yet, and a run over zero peers is a valid no-op.
func LoadPeers(path string) ([]Peer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read peers file: %w", err)
	}

	var f peersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse peers file %s: %w", path, err)
	}

	peers := make([]Peer, 0, len(f.Peers))
	for _, p := range f.Peers {
		p.Ref = strings.TrimSpace(p.Ref)
		if p.Ref == "" {
			continue
		}
		peers = append(peers, p)
	}
	return peers, nil
}

// Validate checks a loaded peer list for operator mistakes: an empty
// list and duplicate references.
func Validate(peers []Peer) error {
	if len(peers) == 0 {
		return ErrNoPeers
	}
	seen := make(map[string]struct{}, len(peers))
	for _, p := range peers {
		u := strings.ToLower(p.Username())
		if _, ok := seen[u]; ok {
			return fmt.Errorf("duplicate peer: %s", p.Ref)
		}
		seen[u] = struct{}{}
	}
	return nil
}

// Username returns the peer reference without the @ prefix.
func (p Peer) Username() string {
	return strings.TrimPrefix(p.Ref, "@")
}
