// ABOUTME: Notification listing CLI command
// ABOUTME: Fetches the live window and prints a filtered, searchable table
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/bellhop/models"
	"github.com/harperreed/bellhop/session"
)

// ListCommand prints the notification window as a table
func ListCommand(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	unreadOnly := fs.Bool("unread", false, "Show only unread notifications")
	search := fs.String("search", "", "Filter by title or message text")
	pages := fs.Int("pages", 1, "Number of history pages to fetch")
	limit := fs.Int("limit", 0, "Max rows to print (0 = all)")
	ascending := fs.Bool("asc", false, "Oldest first")
	_ = fs.Parse(args)

	ctx := context.Background()
	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	// Pull extra history pages beyond the live window on request
	for page := 2; page <= *pages; page++ {
		added, total, err := sess.LoadMore(ctx, page)
		if err != nil {
			return err
		}
		if added == 0 || len(sess.Store.Items()) >= total {
			break
		}
	}

	var items []models.Notification
	if *search != "" {
		items = sess.Store.Search(*search)
	} else if *unreadOnly {
		unread := false
		items = sess.Store.Filter(&unread)
	} else {
		items = sess.Store.Items()
	}

	if *ascending {
		models.SortByCreatedAt(items, true)
	}
	if *limit > 0 && len(items) > *limit {
		items = items[:*limit]
	}

	if len(items) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "  \tID\tTYPE\tAGE\tTITLE")
	_, _ = fmt.Fprintln(w, "--\t--\t----\t---\t-----")

	for _, n := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			statusGlyph(n), n.ID, n.Type, models.TimeAgo(n.CreatedAt), n.Title)
	}
	_ = w.Flush()

	unread, urgent := sess.Store.Counters()
	fmt.Printf("\n%d unread", unread)
	if urgent > 0 {
		fmt.Printf(" (%d urgent)", urgent)
	}
	fmt.Println()

	return nil
}

// statusGlyph marks unread and urgent rows in list output.
func statusGlyph(n models.Notification) string {
	switch {
	case !n.Read && n.IsUrgent():
		return "‼️"
	case !n.Read:
		return "●"
	default:
		return " "
	}
}
