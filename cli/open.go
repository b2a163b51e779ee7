// ABOUTME: Open CLI command for jumping to a notification's destination
// ABOUTME: Resolves the navigation target and launches the default browser
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/harperreed/bellhop/session"
	"github.com/harperreed/bellhop/store"
)

// OpenCommand resolves a notification's destination and opens it.
func OpenCommand(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	printOnly := fs.Bool("print", false, "Print the URL instead of opening the browser")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: bellhop open <id>")
	}
	id := fs.Arg(0)

	ctx := context.Background()
	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	path, err := sess.Resolve(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no notification with id %s", id)
		}
		return err
	}

	target, err := destinationURL(sess.Config.ServerURL, path)
	if err != nil {
		return err
	}

	if *printOnly {
		fmt.Println(target)
		return nil
	}

	fmt.Printf("Opening %s\n", target)
	if err := openBrowser(target); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	// Opening implies the notification was seen
	if err := sess.Dispatcher.MarkRead(ctx, id); err != nil {
		fmt.Printf("warning: could not mark %s as read: %v\n", id, err)
	}

	return nil
}

// destinationURL joins a resolved path onto the server base. Absolute URLs
// from explicit actions pass through untouched.
func destinationURL(base, path string) (string, error) {
	parsed, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid destination %q: %w", path, err)
	}
	if parsed.IsAbs() {
		return path, nil
	}

	root, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", base, err)
	}
	return root.ResolveReference(parsed).String(), nil
}

// openBrowser attempts to open URL in default browser
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
