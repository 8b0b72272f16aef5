package questions

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// openSQL connects to HALLBOT_TEST_DSN and recreates the questions table.
func openSQL(t *testing.T) *SQLStore {
	t.Helper()
	dsn := os.Getenv("HALLBOT_TEST_DSN")
	if dsn == "" {
		t.Skip("HALLBOT_TEST_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	for _, file := range []string{"../../migrations/0001_create_questions.down.sql", "../../migrations/0001_create_questions.up.sql"} {
		ddl, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("read %s: %v", file, err)
		}
		if _, err := db.Exec(string(ddl)); err != nil {
			t.Fatalf("apply %s: %v", file, err)
		}
	}
	s := NewSQLStore(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openSQL(t)

	if _, err := s.Put(ctx, 42, "first", "Anna", "anna"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, 42, "When is the next show?", "Anna", "anna"); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Put(ctx, 43, "other", "", "")

	rec, err := s.Get(ctx, 42)
	if err != nil || rec.Question != "When is the next show?" {
		t.Fatalf("get = %+v, %v", rec, err)
	}

	if _, err := s.Arm(ctx, 43); err != nil {
		t.Fatalf("arm 43: %v", err)
	}
	released, err := s.Arm(ctx, 42)
	if err != nil || !reflect.DeepEqual(released, []int64{43}) {
		t.Fatalf("arm 42: released=%v err=%v", released, err)
	}
	armed, err := s.FindArmed(ctx)
	if err != nil || armed.UserID != 42 {
		t.Fatalf("armed = %+v, %v", armed, err)
	}

	if err := s.MarkAnswered(ctx, 42); err != nil {
		t.Fatalf("mark answered: %v", err)
	}
	st, err := s.Stats(ctx)
	if err != nil || st != (Stats{Total: 2, Pending: 1, Answered: 1}) {
		t.Fatalf("stats = %+v, %v", st, err)
	}
	if err := s.Delete(ctx, 42); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Arm(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("arm deleted: %v", err)
	}
	pending, err := s.Pending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, %v", pending, err)
	}
}
