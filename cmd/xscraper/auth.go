package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"xscraper/pkg/auth"
	"xscraper/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored X credentials",
	Long: `Manage stored X account credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (XSCRAPER_USERNAME / XSCRAPER_PASSWORD, read-only)

The browser profile holds the actual session; stored credentials are a
convenience for re-login when the session expires.`,
}

// authSaveCmd represents the auth save command
var authSaveCmd = &cobra.Command{
	Use:   "save [username]",
	Short: "Store account credentials securely",
	Example: `  # Interactive
  xscraper auth save

  # With username
  xscraper auth save myhandle`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAuthSave,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Run:   runAuthList,
}

// authRemoveCmd represents the auth remove command
var authRemoveCmd = &cobra.Command{
	Use:   "remove <username>",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	Run:   runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSaveCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
}

func runAuthSave(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.Error("Failed to initialize credential manager: " + err.Error())
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	var username string
	if len(args) > 0 {
		username = strings.TrimSpace(args[0])
	}
	if username == "" {
		fmt.Print("X username (without @): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.Error("Failed to read username: " + err.Error())
			os.Exit(1)
		}
		username = strings.TrimSpace(strings.TrimPrefix(input, "@"))
	}
	if username == "" {
		ui.Error("Username is required")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		fmt.Printf("Account %q already exists. Update credentials? (y/N): ", username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("Password (hidden): ")
	password, err := readPassword()
	if err != nil {
		ui.Error("Failed to read password: " + err.Error())
		os.Exit(1)
	}
	if password == "" {
		ui.Error("Password is required")
		os.Exit(1)
	}

	fmt.Print("\nEmail for verification prompts (optional, press Enter to skip): ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	account := &auth.Account{
		Username: username,
		Password: password,
		Email:    email,
	}
	if err := manager.Store(account); err != nil {
		ui.Error("Failed to store credentials: " + err.Error())
		os.Exit(1)
	}

	ui.Success("Credentials saved for @" + username)
	fmt.Println("\nNext step: run 'xscraper login' to open the browser and sign in.")
}

func runAuthList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.Error("Failed to initialize credential manager: " + err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.Error("Failed to list accounts: " + err.Error())
		os.Exit(1)
	}
	if len(accounts) == 0 {
		fmt.Println("No stored accounts. Use 'xscraper auth save' to add one.")
		return
	}

	ui.Title("Stored accounts")
	for _, account := range accounts {
		masked := auth.SanitizeAccount(account)
		line := "@" + masked.Username
		if masked.Email != "" {
			line += "  (" + masked.Email + ")"
		}
		fmt.Println(line)
	}
}

func runAuthRemove(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.Error("Failed to initialize credential manager: " + err.Error())
		os.Exit(1)
	}

	username := strings.TrimSpace(strings.TrimPrefix(args[0], "@"))
	if err := manager.Delete(username); err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}
	ui.Success("Removed credentials for @" + username)
}

// readPassword reads a line without echoing it
func readPassword() (string, error) {
	data, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
