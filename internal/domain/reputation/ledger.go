package reputation

import (
	"context"
	"time"
)

// Entry is one line of a profile's reputation history.
type Entry struct {
	ID         string
	ProfileID  string
	Delta      int
	Reason     Reason
	SubjectID  string
	ScoreAfter int
	CreatedAt  time.Time
}

// Ledger stores the reputation history. Entries are appended in the same
// transaction that changes the score.
type Ledger interface {
	Append(ctx context.Context, e *Entry) error
	ListByProfile(ctx context.Context, profileID string, limit, offset int) ([]*Entry, error)
}
