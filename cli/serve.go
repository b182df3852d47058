// ABOUTME: Web server subcommand
// ABOUTME: Serves the event pages and the OAuth callback
package cli

import (
	"flag"
	"fmt"

	"github.com/harperreed/calmirror/web"
)

// ServeCommand starts the web UI
func ServeCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", app.Config.ListenAddr, "Listen address")
	_ = fs.Parse(args)

	server, err := web.NewServer(app.Events, app.Tokens)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	fmt.Fprintf(app.Out, "Serving on %s (OAuth redirect: %s)\n", *addr, app.Config.RedirectURL)
	return server.Start(*addr)
}
