// ABOUTME: Entry point for the calmirror web server, MCP server and CLI
// ABOUTME: Loads configuration and routes to the requested command
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/calmirror/cli"
	"github.com/harperreed/calmirror/config"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configFile := flag.String("config", "", "Config file (default: ~/.config/calmirror/config.yaml)")
	envFile := flag.String("env-file", ".env", "Environment file to load")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	var overrides config.Config
	flag.StringVar(&overrides.DatabasePath, "db-path", "", "Database path (default: ~/.local/share/calmirror/calmirror.db)")
	flag.StringVar(&overrides.TokenPath, "token-path", "", "OAuth token path (default: ~/.local/share/calmirror/token.json)")
	flag.StringVar(&overrides.CredentialsPath, "credentials", "", "Google client credentials JSON")
	flag.StringVar(&overrides.CalendarID, "calendar-id", "", "Google Calendar ID (default: primary)")
	flag.StringVar(&overrides.ListenAddr, "addr", "", "Web server listen address (default: :8080)")

	// Parse global flags; subcommands parse the rest
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("calmirror version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	if command == "help" {
		printUsage()
		return
	}

	cfg, err := config.Load(*configFile, *envFile, overrides)
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}
	setupLogging(cfg.LogLevel, *verbose)

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatal("failed to initialize", "err", err)
	}
	defer app.Close()

	log.Debug("configuration loaded", "db", cfg.DatabasePath, "token", cfg.TokenPath, "calendar", cfg.CalendarID)

	switch command {
	case "serve":
		err = cli.ServeCommand(app, commandArgs)

	case "mcp":
		err = cli.MCPCommand(app, version)

	case "auth":
		err = routeAuth(app, commandArgs)

	case "events":
		err = routeEvents(app, commandArgs)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		app.Close()
		os.Exit(1)
	}

	if err != nil {
		app.Close()
		log.Fatal("command failed", "command", command, "err", err)
	}
}

func routeAuth(app *cli.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("auth requires a subcommand: url or exchange")
	}

	switch args[0] {
	case "url":
		return cli.AuthURLCommand(app, args[1:])
	case "exchange":
		return cli.AuthExchangeCommand(app, args[1:])
	default:
		return fmt.Errorf("unknown auth subcommand: %s", args[0])
	}
}

func routeEvents(app *cli.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("events requires a subcommand: list, create, delete, validate or cancel")
	}

	switch args[0] {
	case "list":
		return cli.ListEventsCommand(app, args[1:])
	case "create":
		return cli.CreateEventCommand(app, args[1:])
	case "delete":
		return cli.DeleteEventCommand(app, args[1:])
	case "validate":
		return cli.ValidateEventCommand(app, args[1:])
	case "cancel":
		return cli.CancelEventCommand(app, args[1:])
	default:
		return fmt.Errorf("unknown events subcommand: %s", args[0])
	}
}

func setupLogging(levelName string, verbose bool) {
	level, err := log.ParseLevel(levelName)
	if err != nil {
		log.Warn("unknown log level, using info", "level", levelName)
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	log.SetLevel(level)
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.Kitchen)
}

func printUsage() {
	fmt.Printf(`calmirror v%s - Google Calendar events with a local mirror

USAGE:
  calmirror [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/calmirror/config.yaml)
  --env-file <path>      Environment file to load (default: .env)
  --db-path <path>       Database path (default: ~/.local/share/calmirror/calmirror.db)
  --token-path <path>    OAuth token path (default: ~/.local/share/calmirror/token.json)
  --credentials <path>   Google client credentials JSON (default: ~/.config/calmirror/credentials.json)
  --calendar-id <id>     Google Calendar ID (default: primary)
  --addr <addr>          Web server listen address (default: :8080)
  --verbose              Enable debug logging

COMMANDS:
  serve                  Start the web UI and OAuth callback handler
  mcp                    Start MCP server for Claude Desktop
  auth                   Google OAuth commands
  events                 Event commands

AUTH COMMANDS:
  calmirror auth url [--open]          Print the Google consent URL
  calmirror auth exchange [--code <c>] Exchange an authorization code for a token

EVENT COMMANDS:
  calmirror events list                List mirrored events
  calmirror events create              Create an all-day event
    --start <YYYY-MM-DD>                 First day (required)
    --end <YYYY-MM-DD>                   Last day (required)
    --summary <text>                     Title (required)
  calmirror events delete <id>         Delete an event remotely and locally
  calmirror events validate <id>       Mark an event validated (green)
  calmirror events cancel <id>         Mark an event cancelled (light red)

ENVIRONMENT:
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, CALMIRROR_CREDENTIALS_PATH,
  CALMIRROR_TOKEN_PATH, CALMIRROR_DB_PATH, CALMIRROR_CALENDAR_ID,
  CALMIRROR_LISTEN_ADDR, CALMIRROR_REDIRECT_URL, CALMIRROR_LOG_LEVEL

`, version)
}
