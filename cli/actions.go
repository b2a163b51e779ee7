// ABOUTME: Mark-read and delete CLI commands
// ABOUTME: One-shot commands that apply optimistic mutations and report server outcome
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/harperreed/bellhop/dispatch"
	"github.com/harperreed/bellhop/session"
	"github.com/harperreed/bellhop/store"
)

// ReadCommand marks a single notification as read.
func ReadCommand(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: bellhop read <id>")
	}
	id := fs.Arg(0)

	ctx := context.Background()
	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	if err := sess.Dispatcher.MarkRead(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no notification with id %s", id)
		}
		return err
	}

	fmt.Printf("✓ Marked %s as read\n", id)
	return nil
}

// ReadAllCommand marks every unread notification as read.
func ReadAllCommand(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("read-all", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	unread, _ := sess.Store.Counters()
	if unread == 0 {
		fmt.Println("Nothing unread.")
		return nil
	}

	err := sess.Dispatcher.MarkAllRead(ctx)

	var partial *dispatch.PartialFailureError
	if errors.As(err, &partial) {
		fmt.Printf("✓ Marked %d as read\n", unread-len(partial.FailedIDs))
		for _, id := range partial.FailedIDs {
			fmt.Printf("  ✗ %s still unread\n", id)
		}
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("✓ Marked %d as read\n", unread)
	return nil
}

// DeleteCommand removes a notification.
func DeleteCommand(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: bellhop delete <id>")
	}
	id := fs.Arg(0)

	ctx := context.Background()
	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	if err := sess.Dispatcher.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no notification with id %s", id)
		}
		return err
	}

	fmt.Printf("✓ Deleted %s\n", id)
	return nil
}
