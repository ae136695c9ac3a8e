package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/townworks/townledger/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the town portal web server",
		Long: `Start the townledger web portal.

The portal serves the dashboard, resident registry, billing sheets,
fund drives, and defaulter reports. Staff sign in with the accounts
created via 'townledger user'. Admin accounts can record changes;
regular accounts get read-only access.

The session secret is taken from the session_secret config key or the
TOWNLEDGER_SESSION_SECRET environment variable. Without one, a random
secret is generated and sessions reset on restart.`,
		Example: `  # Serve on the default port
  townledger serve

  # Serve on a specific port without opening a browser
  townledger serve --port 9000 --open=false`,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().Bool("open", true, "Open the portal in a browser")
	cmd.Flags().Bool("watch", true, "Reload dashboards when the database changes on disk")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	serveCfg := cc.Cfg.GetServeConfig()

	// Flags beat config file values, but only when set explicitly.
	port := serveCfg.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}
	autoOpen := serveCfg.AutoOpen
	if cmd.Flags().Changed("open") {
		autoOpen, _ = cmd.Flags().GetBool("open")
	}
	watch := serveCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch, _ = cmd.Flags().GetBool("watch")
	}

	secret := cc.Cfg.SessionSecret
	if secret == "" {
		secret = os.Getenv("TOWNLEDGER_SESSION_SECRET")
	}
	if secret == "" {
		secret = generateSessionSecret()
		cc.Logger.Warn("no session secret configured, sessions will reset on restart")
	}

	server := ui.NewServer(ui.Config{
		Ledger:        cc.Ledger,
		Store:         cc.Store,
		Auth:          cc.Auth,
		Port:          port,
		Watch:         watch,
		DBPath:        cc.Cfg.Database,
		SessionSecret: secret,
		Logger:        cc.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := fmt.Sprintf("http://localhost:%d", port)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving the town portal on %s\n", url)

	if autoOpen {
		go func() {
			// Give the listener a moment to come up.
			time.Sleep(300 * time.Millisecond)
			if err := openBrowser(url); err != nil {
				cc.Logger.Debug("failed to open browser", "error", err)
			}
		}()
	}

	return server.Serve(ctx)
}

// generateSessionSecret returns a random hex secret for cookie signing.
func generateSessionSecret() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
