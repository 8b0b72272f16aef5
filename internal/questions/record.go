// Package questions keeps the support questions that users sent to the venue
// and that the administrator has not resolved yet.
//
// There is at most one record per user. A new question from the same user
// replaces the previous one. Records are deleted once answered or closed, so
// a store only ever holds open work.
package questions

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNotFound reports that no record exists for the requested user.
var ErrNotFound = errors.New("questions: record not found")

// Record is one user's open question.
type Record struct {
	UserID        int64     `db:"user_id"`
	Question      string    `db:"question"`
	DisplayName   string    `db:"display_name"`
	Handle        string    `db:"handle"`
	CreatedAt     time.Time `db:"created_at"`
	ReadyForReply bool      `db:"ready_for_reply"`
	Answered      bool      `db:"answered"`
}

// Pending reports whether the record still waits for an answer.
func (r Record) Pending() bool { return !r.Answered }

// Armed reports whether the administrator's next free-text message answers this record.
func (r Record) Armed() bool { return r.ReadyForReply && !r.Answered }

// Stats are counts over every record currently stored.
// Total always equals Pending + Answered.
type Stats struct {
	Total    int
	Pending  int
	Answered int
}

// PersistError reports that a mutation was applied in memory but could not
// be written to durable storage. Callers treat it as a warning: the store
// keeps serving the in-memory view and retries the full write on the next
// mutation.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("questions: %s not persisted: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistError reports whether err carries a *PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}

// oldestArmed picks the armed record with the earliest CreatedAt, breaking
// ties by the lowest user id.
func oldestArmed(records []Record) (Record, bool) {
	var (
		best  Record
		found bool
	)
	for _, r := range records {
		if !r.Armed() {
			continue
		}
		if !found || r.CreatedAt.Before(best.CreatedAt) ||
			(r.CreatedAt.Equal(best.CreatedAt) && r.UserID < best.UserID) {
			best, found = r, true
		}
	}
	return best, found
}

func countStats(records []Record) Stats {
	st := Stats{Total: len(records)}
	for _, r := range records {
		if r.Answered {
			st.Answered++
		}
	}
	st.Pending = st.Total - st.Answered
	return st
}

// SortedByAge returns the records ordered oldest first, ties by user id.
func SortedByAge(records map[int64]Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
