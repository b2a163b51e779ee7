// ABOUTME: Action dispatcher for user-triggered notification mutations
// ABOUTME: Handles optimistic apply, server round trip, and confirm-or-rollback
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/bellhop/models"
	"github.com/harperreed/bellhop/remote"
	"github.com/harperreed/bellhop/store"
)

// Logger is the minimal logging surface the dispatcher needs.
type Logger interface {
	Printf(format string, args ...any)
}

// PartialFailureError reports a read-all where the server could not mark
// some ids. Only those roll back; the rest stay read.
type PartialFailureError struct {
	FailedIDs []string
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d notification(s) could not be marked read: %s",
		len(e.FailedIDs), strings.Join(e.FailedIDs, ", "))
}

// Dispatcher turns user intents into optimistic local mutations plus a
// confirmed-or-rolled-back server round trip. One intent at a time per id:
// a second request while one is pending is coalesced into a no-op.
//
// Every method applies its local effect synchronously before touching the
// network, so readers see the change immediately. Errors returned here mean
// the optimistic change was rolled back; adapters surface them as a
// dismissible message.
type Dispatcher struct {
	api    remote.API
	store  *store.Store
	logger Logger
}

// New creates a dispatcher.
func New(api remote.API, s *store.Store, logger Logger) *Dispatcher {
	return &Dispatcher{api: api, store: s, logger: logger}
}

// MarkRead marks one notification read.
func (d *Dispatcher) MarkRead(ctx context.Context, id string) error {
	if item, ok := d.store.Get(id); ok && item.Read && !d.store.HasPending(id) {
		return nil // already read, nothing to do
	}

	if err := d.store.ApplyOptimistic(id, models.MutationMarkRead); err != nil {
		if errors.Is(err, store.ErrMutationPending) {
			return nil
		}
		return err
	}

	if err := d.api.MarkRead(ctx, id, uuid.NewString()); err != nil {
		d.store.Rollback(id)
		d.logf("mark-read %s rejected: %v", id, err)
		return fmt.Errorf("mark as read failed: %w", err)
	}

	d.store.Confirm(id)
	return nil
}

// MarkAllRead marks every loaded unread notification read. On partial
// failure only the ids the server reported roll back, and the returned
// error carries them.
func (d *Dispatcher) MarkAllRead(ctx context.Context) error {
	affected := d.store.ApplyOptimisticReadAll()
	if len(affected) == 0 {
		return nil
	}

	failed, err := d.api.MarkAllRead(ctx, uuid.NewString())
	if err != nil {
		for _, id := range affected {
			d.store.Rollback(id)
		}
		d.logf("read-all rejected, rolled back %d item(s): %v", len(affected), err)
		return fmt.Errorf("mark all read failed: %w", err)
	}

	failedSet := make(map[string]bool, len(failed))
	for _, id := range failed {
		failedSet[id] = true
	}

	var rolledBack []string
	for _, id := range affected {
		if failedSet[id] {
			d.store.Rollback(id)
			rolledBack = append(rolledBack, id)
		} else {
			d.store.Confirm(id)
		}
	}

	if len(rolledBack) > 0 {
		d.logf("read-all partially failed for %v", rolledBack)
		return &PartialFailureError{FailedIDs: rolledBack}
	}
	return nil
}

// Delete removes one notification. A failed delete visibly restores the
// item at its original position rather than leaving a silent gap.
func (d *Dispatcher) Delete(ctx context.Context, id string) error {
	if err := d.store.ApplyOptimistic(id, models.MutationDelete); err != nil {
		if errors.Is(err, store.ErrMutationPending) {
			return nil
		}
		return err
	}

	if err := d.api.Delete(ctx, id, uuid.NewString()); err != nil {
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			// Already gone on the server; our delete is effectively
			// confirmed by observation.
			d.store.Confirm(id)
			return nil
		}
		d.store.Rollback(id)
		d.logf("delete %s rejected: %v", id, err)
		return fmt.Errorf("delete failed: %w", err)
	}

	d.store.Confirm(id)
	return nil
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
