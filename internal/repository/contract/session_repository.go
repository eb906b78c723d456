package contract

import (
	"context"

	"book-discovery-be/pkg/store"
)

// SessionRepository keeps live survey sessions. Get returns (nil, nil) for
// unknown or expired ids.
type SessionRepository interface {
	Save(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, sessionID string) (*store.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
