package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"xscraper/pkg/auth"
	"xscraper/pkg/browser"
	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/ui"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to X and save the session",
	Long: `Open a visible browser window on the X login page.

Log in manually in the browser, then press Enter here. The session cookies
are saved in the persistent browser profile, so later searches run without
logging in again. Re-run this command whenever a search exits with
"authentication required".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runLogin()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&profileDir, "profile-dir", "", "browser profile directory")
}

func runLogin() {
	flags := make(map[string]interface{})
	if profileDir != "" {
		flags["profile-dir"] = profileDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}
	// The whole point of this command is watching the browser.
	cfg.Browser.Headless = false

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.Error("Failed to initialize logging: " + err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()

	ui.Title("xscraper login")
	if manager, err := auth.NewManager(); err == nil {
		if account, err := manager.RetrieveDefault(); err == nil {
			ui.Info("Stored account", account.Username)
		}
	}

	session, err := browser.NewSession(cfg.Browser, log)
	if err != nil {
		ui.Error("Failed to start browser: " + err.Error())
		os.Exit(1)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Navigate(ctx, "https://x.com/login"); err != nil {
		ui.Error("Failed to open the login page: " + err.Error())
		os.Exit(1)
	}

	fmt.Println("\nA browser window has opened. Log in to X there, wait for your")
	fmt.Println("home timeline to load, then come back here.")
	fmt.Print("\nPress Enter when you are logged in... ")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')

	loc, err := session.Location(ctx)
	if err != nil {
		ui.Warning("Could not verify the session: " + err.Error())
		return
	}
	if browser.IsLoginURL(loc) {
		ui.Warning("The browser is still on the login page. The session was not saved.")
		os.Exit(1)
	}

	ui.Success("Session saved. Searches will now run with this login.")
	ui.Info("Profile", cfg.Browser.ProfileDir)
}
