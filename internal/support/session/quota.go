// internal/support/session/quota.go
package session

import "context"

// LimitMessage is shown to the user when the session quota is exhausted.
const LimitMessage = "Session limit reached. Please start a new session."

// Quota enforces the per-session turn limit.
type Quota struct {
	store      *Store
	maxQueries int
}

func NewQuota(store *Store, maxQueries int) *Quota {
	return &Quota{store: store, maxQueries: maxQueries}
}

// Allow reports whether the session may consume another turn. The check
// runs before any other work so an exhausted session costs nothing.
func (q *Quota) Allow(ctx context.Context, sessionID string) (bool, error) {
	count, err := q.store.QueryCount(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return count < q.maxQueries, nil
}

// Consume records one turn against the session.
func (q *Quota) Consume(ctx context.Context, sessionID string) error {
	_, err := q.store.IncrQueryCount(ctx, sessionID)
	return err
}
