// ABOUTME: Pure route resolution for notification navigation targets
// ABOUTME: Maps (type, viewer privilege) to destination paths via static lookup tables
package routes

import (
	"github.com/harperreed/bellhop/models"
)

// Fallback destinations.
const (
	// HistoryPath is the defensive default when nothing else matches.
	HistoryPath = "/notifications"

	adminFallback  = "/admin/inbox"
	memberFallback = "/dashboard"
)

// pathFunc builds a destination path from a notification's metadata.
type pathFunc func(n models.Notification) string

// entityPath routes to a detail page when the entity id is present,
// otherwise to the listing.
func entityPath(listing string) pathFunc {
	return func(n models.Notification) string {
		if id := n.Metadata[models.MetaEntityID]; id != "" {
			return listing + "/" + id
		}
		return listing
	}
}

// staticPath ignores metadata entirely.
func staticPath(path string) pathFunc {
	return func(models.Notification) string { return path }
}

// slugPath routes to a slugged page when the slug is present, otherwise to
// the fallback listing.
func slugPath(prefix, fallback string) pathFunc {
	return func(n models.Notification) string {
		if slug := n.Metadata[models.MetaSlug]; slug != "" {
			return prefix + "/" + slug
		}
		return fallback
	}
}

// privilegedRoutes maps types to operational destinations. Only consulted
// for privileged viewers.
var privilegedRoutes = map[string]pathFunc{
	models.TypeMessageFromClient: entityPath("/admin/messages"),
	models.TypeMessageReply:      entityPath("/admin/messages"),
	models.TypeInternalNote:      entityPath("/admin/messages"),
	models.TypeLeadAssigned:      entityPath("/admin/leads"),
	models.TypeLeadStatusChanged: entityPath("/admin/leads"),
	models.TypeUserLinked:        entityPath("/admin/users"),
	models.TypeCommentNew:        entityPath("/admin/comments"),
	models.TypeCommentApproved:   entityPath("/admin/comments"),
	models.TypeCommentRejected:   entityPath("/admin/comments"),
	models.TypeCommentReply:      entityPath("/admin/comments"),
	models.TypeReminder:          entityPath("/admin/agenda"),
	models.TypeTask:              entityPath("/admin/agenda"),
}

// memberRoutes maps types to the viewer's own restricted destinations.
// Metadata carrying operational ids is deliberately ignored here: a
// non-privileged viewer never receives an operational path, no matter what
// the record would allow constructing.
var memberRoutes = map[string]pathFunc{
	models.TypeMessageFromClient: staticPath("/dashboard/messages"),
	models.TypeMessageReply:      staticPath("/dashboard/messages"),
	models.TypeInternalNote:      staticPath("/dashboard/messages"),
	models.TypeLeadAssigned:      staticPath("/dashboard/requests"),
	models.TypeLeadStatusChanged: staticPath("/dashboard/requests"),
	models.TypeUserLinked:        staticPath("/dashboard/profile"),
	models.TypeCommentNew:        slugPath("/blog", "/dashboard/blog"),
	models.TypeCommentApproved:   slugPath("/blog", "/dashboard/blog"),
	models.TypeCommentRejected:   slugPath("/blog", "/dashboard/blog"),
	models.TypeCommentReply:      slugPath("/blog", "/dashboard/blog"),
	models.TypeReminder:          staticPath("/dashboard/agenda"),
	models.TypeTask:              staticPath("/dashboard/agenda"),
}

// Resolve maps a notification to its navigation target for the viewer's
// access class. First match wins: an explicit action URL, then the
// (type, privilege) table, then the branch fallback, then the history page.
func Resolve(n models.Notification, privileged bool) string {
	if n.Action != nil && n.Action.URL != "" {
		return n.Action.URL
	}

	if n.Type == "" {
		return HistoryPath
	}

	if privileged {
		if build, ok := privilegedRoutes[n.Type]; ok {
			return build(n)
		}
		return adminFallback
	}

	if build, ok := memberRoutes[n.Type]; ok {
		return build(n)
	}
	return memberFallback
}
