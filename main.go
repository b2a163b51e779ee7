// ABOUTME: Entry point for the bellhop notification client
// ABOUTME: Routes to the TUI, the watch daemon, or one-shot CLI commands
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/harperreed/bellhop/cli"
	"github.com/harperreed/bellhop/db"
	"github.com/harperreed/bellhop/remote"
	"github.com/harperreed/bellhop/session"
	"github.com/harperreed/bellhop/tui"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/bellhop/bellhop.db)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("bellhop version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	// Local-only commands that never touch the server
	switch command {
	case "login":
		if err := cli.LoginCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	case "logout":
		if err := cli.LogoutCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	case "help":
		printUsage()
		return
	}

	sess, cleanup, err := buildSession(*dbPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer cleanup()

	switch command {
	case "tui":
		if err := runTUI(sess); err != nil {
			log.Fatalf("TUI failed: %v", err)
		}
	case "watch":
		if err := cli.WatchCommand(sess, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "list":
		if err := cli.ListCommand(sess, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "read":
		if err := cli.ReadCommand(sess, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "read-all":
		if err := cli.ReadAllCommand(sess, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "delete":
		if err := cli.DeleteCommand(sess, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "open":
		if err := cli.OpenCommand(sess, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "sound":
		if err := cli.SoundCommand(sess, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// buildSession assembles the config, database, API client, and store shared
// by every server-facing command.
func buildSession(dbPath string) (*session.Session, func(), error) {
	_ = godotenv.Load()

	cfg, err := remote.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	token, err := remote.LoadToken()
	if err != nil {
		return nil, nil, fmt.Errorf("not logged in; run 'bellhop login --token <token>'")
	}

	if dbPath == "" {
		dbPath = db.DefaultDatabasePath()
	}
	database, err := db.OpenDatabase(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	client := remote.NewClient(cfg.ServerURL, token.AccessToken, cfg.DeviceID, nil)

	sess, err := session.New(cfg, database, client, log.Default())
	if err != nil {
		_ = database.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := sess.Close(); err != nil {
			log.Printf("warning: teardown failed: %v", err)
		}
		_ = database.Close()
	}
	return sess, cleanup, nil
}

// runTUI starts the poll loop and hands the terminal to bubbletea.
func runTUI(sess *session.Session) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.NewModel(sess)
	sess.Start(ctx)

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func printUsage() {
	fmt.Printf(`bellhop v%s - Terminal notification center

USAGE:
  bellhop [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/bellhop/bellhop.db)

COMMANDS:
  bellhop tui            Full-screen notification panel and history
  bellhop watch          Foreground daemon logging new notifications
    --bell=false           Disable the terminal bell

  bellhop list           Print the notification window
    --unread               Show only unread notifications
    --search <text>        Filter by title or message text
    --pages <n>            Fetch additional history pages
    --limit <n>            Max rows to print
    --asc                  Oldest first

  bellhop read <id>      Mark one notification as read
  bellhop read-all       Mark every unread notification as read
  bellhop delete <id>    Delete a notification
  bellhop open <id>      Open a notification's destination in the browser
    --print                Print the URL instead of opening it

  bellhop sound [on|off|status]  Show or set the new-notification sound

  bellhop login          Save an API token
    --token <token>        API bearer token (required)
  bellhop logout         Remove the stored token

CONFIGURATION:
  Config file: ~/.local/share/bellhop/config.json
  Environment: BELLHOP_SERVER_URL, BELLHOP_PRIVILEGED, BELLHOP_POLL_INTERVAL
  A .env file in the working directory is loaded on startup.

EXAMPLES:
  # Authenticate and open the panel
  bellhop login --token "token-from-the-server"
  bellhop tui

  # Triage from the shell
  bellhop list --unread
  bellhop read 01HV3A...
  bellhop read-all

  # Run as a desktop alerter
  bellhop watch

`, version)
}
