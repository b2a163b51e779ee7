// ABOUTME: Watch CLI command running the poll loop as a foreground daemon
// ABOUTME: Logs arrivals, rings the terminal bell, and shuts down on SIGINT/SIGTERM
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/harperreed/bellhop/session"
)

// WatchCommand runs the poll loop in the foreground until interrupted,
// logging each new arrival as it lands.
func WatchCommand(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	bell := fs.Bool("bell", true, "Ring the terminal bell for new unread notifications")
	_ = fs.Parse(args)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "bellhop",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for notifications",
		"server", sess.Config.ServerURL,
		"interval", sess.Config.PollInterval)

	updates := sess.Store.Subscribe()
	sess.Start(ctx)

	// Arrivals are diffed against everything already held, so the first
	// merge after startup does not replay the whole window as news.
	known := make(map[string]bool)
	for _, n := range sess.Store.Items() {
		known[n.ID] = true
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil

		case <-updates:
			for _, n := range sess.Store.Items() {
				if known[n.ID] {
					continue
				}
				known[n.ID] = true
				if n.Read {
					continue
				}
				logger.Info("new notification",
					"id", n.ID,
					"type", n.Type,
					"priority", n.Priority,
					"title", n.Title)
			}

			if sess.Store.ConsumeSoundRequest() && *bell {
				fmt.Print("\a")
			}
		}
	}
}
