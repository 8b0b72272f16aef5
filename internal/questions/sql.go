package questions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
)

const recordColumns = `user_id, question, display_name, handle, created_at, ready_for_reply, answered`

// SQLStore keeps records in the postgres questions table (see migrations/).
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLStore wraps an open connection pool. The store owns db and closes it on Close.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Put(ctx context.Context, userID int64, question, displayName, handle string) (Record, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec, `
		INSERT INTO questions (user_id, question, display_name, handle, created_at, ready_for_reply, answered)
		VALUES ($1, $2, $3, $4, $5, FALSE, FALSE)
		ON CONFLICT (user_id) DO UPDATE SET
			question = EXCLUDED.question,
			display_name = EXCLUDED.display_name,
			handle = EXCLUDED.handle,
			created_at = EXCLUDED.created_at,
			ready_for_reply = FALSE,
			answered = FALSE
		RETURNING `+recordColumns,
		userID, question, displayName, handle, s.now().UTC())
	if err != nil {
		return Record{UserID: userID, Question: question, DisplayName: displayName, Handle: handle},
			&PersistError{Op: "put", Err: err}
	}
	return rec, nil
}

func (s *SQLStore) Get(ctx context.Context, userID int64) (Record, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec, `SELECT `+recordColumns+` FROM questions WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("questions: get %d: %w", userID, err)
	}
	return rec, nil
}

func (s *SQLStore) Arm(ctx context.Context, userID int64) ([]int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, &PersistError{Op: "arm", Err: err}
	}
	defer tx.Rollback()

	var exists int64
	err = tx.GetContext(ctx, &exists, `SELECT user_id FROM questions WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistError{Op: "arm", Err: err}
	}

	var released []int64
	err = tx.SelectContext(ctx, &released, `
		UPDATE questions SET ready_for_reply = FALSE
		WHERE ready_for_reply AND user_id <> $1
		RETURNING user_id`, userID)
	if err != nil {
		return nil, &PersistError{Op: "arm", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE questions SET ready_for_reply = TRUE WHERE user_id = $1`, userID); err != nil {
		return nil, &PersistError{Op: "arm", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &PersistError{Op: "arm", Err: err}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] < released[j] })
	return released, nil
}

func (s *SQLStore) FindArmed(ctx context.Context) (Record, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec, `
		SELECT `+recordColumns+` FROM questions
		WHERE ready_for_reply AND NOT answered
		ORDER BY created_at, user_id
		LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("questions: find armed: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) MarkAnswered(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE questions SET answered = TRUE WHERE user_id = $1`, userID)
	return affected(res, err, "mark_answered")
}

func (s *SQLStore) Delete(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE user_id = $1`, userID)
	return affected(res, err, "delete")
}

func affected(res sql.Result, err error, op string) error {
	if err != nil {
		return &PersistError{Op: op, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &PersistError{Op: op, Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Pending(ctx context.Context) (map[int64]Record, error) {
	var rows []Record
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+recordColumns+` FROM questions WHERE NOT answered`); err != nil {
		return nil, fmt.Errorf("questions: pending: %w", err)
	}
	out := make(map[int64]Record, len(rows))
	for _, r := range rows {
		out[r.UserID] = r
	}
	return out, nil
}

func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	var row struct {
		Total    int `db:"total"`
		Answered int `db:"answered"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT count(*) AS total, count(*) FILTER (WHERE answered) AS answered
		FROM questions`)
	if err != nil {
		return Stats{}, fmt.Errorf("questions: stats: %w", err)
	}
	return Stats{Total: row.Total, Answered: row.Answered, Pending: row.Total - row.Answered}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
