// ABOUTME: Sound preference CLI command
// ABOUTME: Shows and toggles the audible-alert setting persisted across sessions
package cli

import (
	"flag"
	"fmt"

	"github.com/harperreed/bellhop/session"
)

// SoundCommand shows or updates the new-notification sound preference.
func SoundCommand(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("sound", flag.ExitOnError)
	_ = fs.Parse(args)

	mode := "status"
	if fs.NArg() > 0 {
		mode = fs.Arg(0)
	}

	switch mode {
	case "status":
		fmt.Printf("Sound is %s\n", soundWord(sess.Store.SoundEnabled()))
		return nil
	case "on", "off":
		want := mode == "on"
		if sess.Store.SoundEnabled() != want {
			if _, err := sess.ToggleSound(); err != nil {
				return fmt.Errorf("failed to save sound preference: %w", err)
			}
		}
		fmt.Printf("✓ Sound %s\n", soundWord(want))
		return nil
	default:
		return fmt.Errorf("usage: bellhop sound [on|off|status]")
	}
}

func soundWord(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
