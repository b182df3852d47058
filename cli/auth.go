// ABOUTME: Google OAuth CLI commands
// ABOUTME: Prints the consent URL and exchanges authorization codes for stored tokens
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/harperreed/calmirror/sync"
	"golang.org/x/term"
)

// AuthURLCommand prints the Google consent URL
func AuthURLCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("auth url", flag.ExitOnError)
	open := fs.Bool("open", false, "Open the URL in a browser")
	_ = fs.Parse(args)

	authURL := app.Tokens.ConsentURL(sync.NewState())

	fmt.Fprintf(app.Out, "Visit this URL to grant calendar access:\n%s\n\n", authURL)
	fmt.Fprintf(app.Out, "Google redirects to %s with a code.\n", app.Config.RedirectURL)
	fmt.Fprintln(app.Out, "Run 'calmirror serve' to handle it, or pass it to 'calmirror auth exchange --code <code>'.")

	if *open {
		_ = openBrowser(authURL)
	}

	return nil
}

// AuthExchangeCommand trades an authorization code for a stored token
func AuthExchangeCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("auth exchange", flag.ExitOnError)
	code := fs.String("code", "", "Authorization code from the consent redirect")
	_ = fs.Parse(args)

	if *code == "" {
		prompted, err := promptCode()
		if err != nil {
			return err
		}
		*code = prompted
	}

	if err := app.Tokens.ExchangeAuthCode(context.Background(), *code); err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Authenticated successfully\n")
	fmt.Fprintf(app.Out, "✓ Token saved to %s\n", app.Config.TokenPath)
	return nil
}

func promptCode() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--code is required")
	}

	fmt.Fprint(os.Stderr, "Authorization code: ")
	codeBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read code: %w", err)
	}

	code := strings.TrimSpace(string(codeBytes))
	if code == "" {
		return "", fmt.Errorf("authorization code cannot be empty")
	}
	return code, nil
}

// openBrowser opens a URL in the default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
