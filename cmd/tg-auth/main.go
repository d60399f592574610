package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/glebarez/sqlite"
	"github.com/gotd/td/session/tdesktop"
	"github.com/joho/godotenv"
)

// Interactive helper that produces the TG_SESSION_STRING the collector
// needs. Run it once on a machine where you can receive the login code
// (or have Telegram Desktop installed), then copy the string to .env.
func main() {
	_ = godotenv.Load()

	fmt.Println("=== telegram session helper ===")
	fmt.Println("generates the session string the stats collector authenticates with")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	accounts, tdataPath := findDesktopAccounts(reader)

	useDesktop := false
	if len(accounts) > 0 {
		fmt.Printf("\nfound %d telegram desktop session(s) at %s\n", len(accounts), tdataPath)
		fmt.Print("use the desktop session instead of phone login? [Y/n]: ")
		choice, _ := reader.ReadString('\n')
		useDesktop = strings.TrimSpace(choice) != "n"
	} else {
		fmt.Println("no telegram desktop session found, falling back to phone login")
	}

	apiID, apiHash := apiCredentials(reader)

	var client *gotgproto.Client
	var err error
	if useDesktop {
		client, err = loginFromDesktop(apiID, apiHash, accounts, reader)
	} else {
		client, err = loginWithPhone(apiID, apiHash, reader)
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	defer client.Stop()

	sessionString, err := client.ExportStringSession()
	if err != nil {
		fmt.Printf("error exporting session: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nauthentication successful")
	fmt.Printf("logged in as: @%s\n", client.Self.Username)
	fmt.Println("\nsession string:")
	fmt.Println("---")
	fmt.Println(sessionString)
	fmt.Println("---")
	fmt.Println("\nput this in .env as TG_SESSION_STRING")
	fmt.Println("keep it secret: it grants full access to the account")
}

// findDesktopAccounts probes the default tdata location and, failing
// that, asks for a custom one.
func findDesktopAccounts(reader *bufio.Reader) ([]tdesktop.Account, string) {
	path := defaultTdataPath()
	accounts, err := tdesktop.Read(path, nil)
	if err == nil && len(accounts) > 0 {
		return accounts, path
	}

	fmt.Printf("no session at default path: %s\n", path)
	fmt.Print("enter telegram desktop path (or press enter to skip): ")
	custom, _ := reader.ReadString('\n')
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return nil, path
	}
	if !strings.HasSuffix(custom, "tdata") {
		custom = filepath.Join(custom, "tdata")
	}
	accounts, err = tdesktop.Read(custom, nil)
	if err != nil {
		return nil, custom
	}
	return accounts, custom
}

func defaultTdataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Telegram Desktop", "tdata")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Telegram Desktop", "tdata")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "TelegramDesktop", "tdata")
	}
}

// apiCredentials reads api_id/api_hash from the environment, prompting
// for whatever is missing.
func apiCredentials(reader *bufio.Reader) (int, string) {
	apiIDStr := os.Getenv("TG_API_ID")
	apiHash := os.Getenv("TG_API_HASH")

	if apiIDStr == "" {
		fmt.Print("enter your api_id (from https://my.telegram.org): ")
		apiIDStr, _ = reader.ReadString('\n')
		apiIDStr = strings.TrimSpace(apiIDStr)
	}
	if apiHash == "" {
		fmt.Print("enter your api_hash: ")
		apiHash, _ = reader.ReadString('\n')
		apiHash = strings.TrimSpace(apiHash)
	}

	apiID, err := strconv.Atoi(apiIDStr)
	if err != nil {
		fmt.Printf("error: invalid api_id: %v\n", err)
		os.Exit(1)
	}
	return apiID, apiHash
}

func loginFromDesktop(apiID int, apiHash string, accounts []tdesktop.Account, reader *bufio.Reader) (*gotgproto.Client, error) {
	account := accounts[0]
	if len(accounts) > 1 {
		fmt.Printf("\n%d accounts available, select one [1]: ", len(accounts))
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(accounts) {
			account = accounts[n-1]
		}
	}

	fmt.Println("\nimporting telegram desktop session...")
	return gotgproto.NewClient(
		apiID,
		apiHash,
		gotgproto.ClientTypePhone(""),
		&gotgproto.ClientOpts{
			Session:          sessionMaker.TdataSession(account).Name("tdata_session"),
			DisableCopyright: true,
		},
	)
}

func loginWithPhone(apiID int, apiHash string, reader *bufio.Reader) (*gotgproto.Client, error) {
	fmt.Print("enter your phone number (with country code, e.g. +1234567890): ")
	phone, _ := reader.ReadString('\n')
	phone = strings.TrimSpace(phone)

	fmt.Println("\nlogging in... (check telegram for the confirmation code)")
	client, err := gotgproto.NewClient(
		apiID,
		apiHash,
		gotgproto.ClientTypePhone(phone),
		&gotgproto.ClientOpts{
			Session:          sessionMaker.SqlSession(sqlite.Open("tg_session")),
			DisableCopyright: true,
		},
	)
	if err == nil {
		fmt.Println("\ntg_session.db holds a temporary copy of the session;")
		fmt.Println("delete it once the string is saved.")
	}
	return client, err
}
