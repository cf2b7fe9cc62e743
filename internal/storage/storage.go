package storage

import (
	"context"

	"github.com/hakan-sariman/webhook-inbox/internal/model"
)

// InsertResult is the outcome of an idempotent insert.
type InsertResult int

const (
	// Inserted means a new row was created.
	Inserted InsertResult = iota
	// Duplicate means a row with the same message_id already existed;
	// the stored row is untouched.
	Duplicate
)

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 100
)

// Query is the filter set for QueryMessages. Zero-valued filters are
// ignored; the rest combine with AND.
type Query struct {
	Limit  int
	Offset int
	// From is an exact match on the sender msisdn.
	From string
	// Since is an inclusive lexicographic lower bound on ts.
	Since string
	// Text is a case-insensitive substring match on the message text.
	Text string
}

// Clamp normalizes Limit into [1, MaxQueryLimit] and Offset to >= 0.
func (q *Query) Clamp() {
	if q.Limit <= 0 {
		q.Limit = 1
	}
	if q.Limit > MaxQueryLimit {
		q.Limit = MaxQueryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

type Storage interface {
	// InsertMessage stores m exactly once, keyed by message_id. Racing
	// inserts with the same key resolve at the storage constraint:
	// exactly one Inserted, the rest Duplicate.
	InsertMessage(ctx context.Context, m *model.Message) (InsertResult, error)
	// QueryMessages returns matching messages ordered by ts then
	// message_id, plus the total match count before pagination.
	QueryMessages(ctx context.Context, q Query) (*model.Page, error)
	// Stats returns the aggregate summary over all messages.
	Stats(ctx context.Context) (*model.Stats, error)
	// Ping reports storage reachability, used by readiness.
	Ping(ctx context.Context) error
	Close()
}
