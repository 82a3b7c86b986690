// Package persistence keeps edit drafts between requests of the same browser
// session.
package persistence

import (
	"context"
	"fmt"

	"github.com/miniinbox/inbox/internal/editor"
)

// DraftKey identifies one ticket's draft within one browser session.
type DraftKey struct {
	SessionID string
	TicketID  int
}

func (k DraftKey) String() string {
	return fmt.Sprintf("draft:%s:%d", k.SessionID, k.TicketID)
}

// DraftStore holds editor snapshots and guards against concurrent saves of
// the same draft.
type DraftStore interface {
	Load(ctx context.Context, key DraftKey) (editor.Snapshot, bool, error)
	Store(ctx context.Context, key DraftKey, snapshot editor.Snapshot) error
	Delete(ctx context.Context, key DraftKey) error
	// AcquireSave claims the right to save key. ok is false when another save
	// of the same draft is in flight. release must be called once when ok.
	AcquireSave(ctx context.Context, key DraftKey) (release func(), ok bool, err error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
