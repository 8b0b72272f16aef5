package questions

import "context"

// Store is durable keyed storage of question records.
//
// Mutations return *PersistError when the change is visible in memory but
// did not reach durable storage.
type Store interface {
	// Put creates or replaces the record for userID as a fresh, unarmed question.
	Put(ctx context.Context, userID int64, question, displayName, handle string) (Record, error)
	// Get returns the record for userID or ErrNotFound.
	Get(ctx context.Context, userID int64) (Record, error)
	// Arm marks the record for userID ready for reply and disarms every other
	// record. It returns the ids that were disarmed, in ascending order.
	Arm(ctx context.Context, userID int64) (released []int64, err error)
	// FindArmed returns the armed, unanswered record or ErrNotFound.
	FindArmed(ctx context.Context) (Record, error)
	// MarkAnswered flags the record for userID as answered.
	MarkAnswered(ctx context.Context, userID int64) error
	// Delete removes the record for userID; ErrNotFound when already gone.
	Delete(ctx context.Context, userID int64) error
	// Pending returns every unanswered record keyed by user id.
	Pending(ctx context.Context) (map[int64]Record, error)
	// Stats counts all stored records.
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
