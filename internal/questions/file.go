package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/m3rciful/hallbot/core/logger"
)

// Layouts accepted for created_at. Files written by earlier deployments
// carry naive ISO-8601 timestamps without an offset.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// fileRecord is the on-disk shape of one record.
type fileRecord struct {
	Question      string `json:"question"`
	Handle        string `json:"username,omitempty"`
	DisplayName   string `json:"full_name,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	ReadyForReply bool   `json:"admin_ready_to_reply"`
	Answered      bool   `json:"answered"`
}

// FileStore keeps all records in one JSON document that is rewritten in full
// on every mutation. The document maps the stringified user id to a record
// object; a bare string value is read as an unarmed question.
type FileStore struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	records map[int64]Record
}

// FileOption customizes a FileStore.
type FileOption func(*FileStore)

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// OpenFile loads the document at path. A missing file yields an empty store.
// An unreadable or malformed file also yields an empty store; the problem is
// logged and the next mutation overwrites the file.
func OpenFile(ctx context.Context, path string, opts ...FileOption) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("questions: empty store path")
	}
	s := &FileStore{path: path, now: time.Now, records: map[int64]Record{}}
	for _, opt := range opts {
		opt(s)
	}

	start := time.Now()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info(ctx, "store", "store.load",
			slog.String("status", "skip"),
			slog.String("path", path),
			slog.String("cause", "missing"),
		)
		return s, nil
	case err != nil:
		logger.Error(ctx, "store", "store.load",
			slog.String("status", "fail"),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return s, nil
	}

	records, skipped, err := decodeDocument(data)
	if err != nil {
		logger.Error(ctx, "store", "store.load",
			slog.String("status", "fail"),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return s, nil
	}
	s.records = records
	logger.Info(ctx, "store", "store.load",
		slog.String("status", "ok"),
		slog.String("path", path),
		slog.Int("count", len(records)),
		slog.Int("skipped", skipped),
		slog.Duration("duration", logger.Took(start)),
	)
	return s, nil
}

func decodeDocument(data []byte) (map[int64]Record, int, error) {
	records := map[int64]Record{}
	if len(bytes.TrimSpace(data)) == 0 {
		return records, 0, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, 0, fmt.Errorf("parse questions document: %w", err)
	}
	skipped := 0
	for key, value := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			skipped++
			continue
		}
		rec, err := decodeRecord(value)
		if err != nil {
			skipped++
			continue
		}
		rec.UserID = id
		records[id] = rec
	}
	return records, skipped, nil
}

func decodeRecord(value json.RawMessage) (Record, error) {
	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return Record{}, errors.New("null record")
	}
	var legacy string
	if err := json.Unmarshal(value, &legacy); err == nil {
		return Record{Question: legacy}, nil
	}
	var fr fileRecord
	if err := json.Unmarshal(value, &fr); err != nil {
		return Record{}, err
	}
	return Record{
		Question:      fr.Question,
		Handle:        fr.Handle,
		DisplayName:   fr.DisplayName,
		CreatedAt:     parseCreatedAt(fr.CreatedAt),
		ReadyForReply: fr.ReadyForReply,
		Answered:      fr.Answered,
	}, nil
}

func parseCreatedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func encodeDocument(records map[int64]Record) ([]byte, error) {
	doc := make(map[string]fileRecord, len(records))
	for id, r := range records {
		fr := fileRecord{
			Question:      r.Question,
			Handle:        r.Handle,
			DisplayName:   r.DisplayName,
			ReadyForReply: r.ReadyForReply,
			Answered:      r.Answered,
		}
		if !r.CreatedAt.IsZero() {
			fr.CreatedAt = r.CreatedAt.Format(time.RFC3339Nano)
		}
		doc[strconv.FormatInt(id, 10)] = fr
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic replaces path so that readers see either the old or the new document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

// persistLocked writes the whole document. s.mu must be held.
func (s *FileStore) persistLocked(ctx context.Context, op string) error {
	start := time.Now()
	data, err := encodeDocument(s.records)
	if err == nil {
		err = writeAtomic(s.path, data)
	}
	if err != nil {
		logger.Error(ctx, "store", "store.persist",
			slog.String("status", "fail"),
			slog.String("op", op),
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)
		return &PersistError{Op: op, Err: err}
	}
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "store", "store.persist",
			slog.String("status", "ok"),
			slog.String("op", op),
			slog.Int("count", len(s.records)),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return nil
}

func (s *FileStore) Put(ctx context.Context, userID int64, question, displayName, handle string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := Record{
		UserID:      userID,
		Question:    question,
		DisplayName: displayName,
		Handle:      handle,
		CreatedAt:   s.now(),
	}
	s.records[userID] = rec
	return rec, s.persistLocked(ctx, "put")
}

func (s *FileStore) Get(_ context.Context, userID int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *FileStore) Arm(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	var released []int64
	for id, r := range s.records {
		if id != userID && r.ReadyForReply {
			if !r.Answered {
				released = append(released, id)
			}
			r.ReadyForReply = false
			s.records[id] = r
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] < released[j] })
	target.ReadyForReply = true
	s.records[userID] = target
	return released, s.persistLocked(ctx, "arm")
}

func (s *FileStore) FindArmed(_ context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r)
	}
	rec, ok := oldestArmed(all)
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *FileStore) MarkAnswered(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return ErrNotFound
	}
	rec.Answered = true
	s.records[userID] = rec
	return s.persistLocked(ctx, "mark_answered")
}

func (s *FileStore) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[userID]; !ok {
		return ErrNotFound
	}
	delete(s.records, userID)
	return s.persistLocked(ctx, "delete")
}

func (s *FileStore) Pending(_ context.Context) (map[int64]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]Record, len(s.records))
	for id, r := range s.records {
		if r.Pending() {
			out[id] = r
		}
	}
	return out, nil
}

func (s *FileStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r)
	}
	return countStats(all), nil
}

// Close is a no-op; every mutation is already on disk.
func (s *FileStore) Close() error { return nil }

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }
