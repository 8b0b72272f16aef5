// Package relay brokers support conversations between users and the single
// venue administrator.
//
// A user's free text becomes an open question and is forwarded to the
// administrator with "reply" and "close" actions. Choosing "reply" arms the
// question; the administrator's next free text is delivered to the asker and
// the question is dropped. Delivery is attempted once: on failure the
// question is dropped as well and the administrator sees the error.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/m3rciful/hallbot/core/logger"
	"github.com/m3rciful/hallbot/internal/notice"
	"github.com/m3rciful/hallbot/internal/questions"
)

// Service runs relay transitions one at a time.
type Service struct {
	mu        sync.Mutex
	store     questions.Store
	out       Messenger
	adminID   int64
	formatter notice.Formatter
}

// New builds a Service. adminID 0 means no administrator is configured:
// questions are still stored but nobody is notified.
func New(store questions.Store, out Messenger, adminID int64, formatter notice.Formatter) *Service {
	return &Service{store: store, out: out, adminID: adminID, formatter: formatter}
}

// IsAdmin reports whether id is the administrator.
func (s *Service) IsAdmin(id int64) bool {
	return s.adminID != 0 && id == s.adminID
}

// AdminID returns the configured administrator id.
func (s *Service) AdminID() int64 { return s.adminID }

// Formatter exposes the formatter used for outbound texts.
func (s *Service) Formatter() notice.Formatter { return s.formatter }

// Submit stores text as asker's question, replacing any earlier one,
// confirms receipt to the asker and notifies the administrator.
func (s *Service) Submit(ctx context.Context, asker Asker, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = logger.WithQuestion(ctx, asker.ID)

	prev, err := s.store.Get(ctx, asker.ID)
	found := err == nil
	if err != nil && !errors.Is(err, questions.ErrNotFound) {
		return s.fail(ctx, "relay.submit", fmt.Errorf("relay: load question: %w", err))
	}
	if err := checkTransition(ctx, prev, found, EventSubmit); err != nil {
		return s.fail(ctx, "relay.submit", err)
	}

	rec, err := s.store.Put(ctx, asker.ID, text, asker.DisplayName, asker.Handle)
	if err != nil && !questions.IsPersistError(err) {
		return s.fail(ctx, "relay.submit", fmt.Errorf("relay: store question: %w", err))
	}
	persistErr := err

	if _, err := s.out.Send(ctx, asker.ID, notice.Submitted()); err != nil {
		logger.Warn(ctx, "relay", "relay.submit.confirm",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}

	if s.adminID == 0 {
		logger.Warn(ctx, "relay", "relay.submit",
			slog.String("status", "skip"),
			slog.String("cause", "admin_not_configured"),
		)
		return nil
	}
	if _, err := s.out.Send(ctx, s.adminID, s.formatter.QuestionNotice(rec.UserID, rec.Question, rec.Handle, rec.DisplayName)); err != nil {
		return s.fail(ctx, "relay.submit", fmt.Errorf("relay: notify admin: %w", err))
	}
	if persistErr != nil {
		s.warnPersist(ctx, persistErr)
	}

	logger.Info(ctx, "relay", "relay.submit",
		slog.String("status", "ok"),
		slog.Bool("replaced", found),
	)
	return nil
}

// Arm selects the question of userID as the target of the administrator's
// next free-text message. Any other armed question is released. origin is
// the notice the administrator acted on; it is edited when the question no
// longer exists.
func (s *Service) Arm(ctx context.Context, actorID, userID int64, origin Message) error {
	if !s.IsAdmin(actorID) {
		return s.reject(ctx, "relay.arm", userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = logger.WithQuestion(ctx, userID)

	rec, err := s.store.Get(ctx, userID)
	if errors.Is(err, questions.ErrNotFound) {
		return s.stale(ctx, "relay.arm", origin)
	}
	if err != nil {
		return s.fail(ctx, "relay.arm", fmt.Errorf("relay: load question: %w", err))
	}
	if err := checkTransition(ctx, rec, true, EventArm); err != nil {
		if isInvalidTransition(err) {
			return s.stale(ctx, "relay.arm", origin)
		}
		return s.fail(ctx, "relay.arm", err)
	}

	released, err := s.store.Arm(ctx, userID)
	switch {
	case errors.Is(err, questions.ErrNotFound):
		return s.stale(ctx, "relay.arm", origin)
	case questions.IsPersistError(err):
		s.warnPersist(ctx, err)
	case err != nil:
		return s.fail(ctx, "relay.arm", fmt.Errorf("relay: arm question: %w", err))
	}

	if _, err := s.out.Send(ctx, s.adminID, notice.Armed(userID, rec.Question, released)); err != nil {
		logger.Warn(ctx, "relay", "relay.arm.confirm",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, "relay", "relay.arm",
		slog.String("status", "ok"),
		slog.Int("released", len(released)),
	)
	return nil
}

// Close drops the question of userID without telling the asker.
func (s *Service) Close(ctx context.Context, actorID, userID int64, origin Message) error {
	if !s.IsAdmin(actorID) {
		return s.reject(ctx, "relay.close", userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = logger.WithQuestion(ctx, userID)

	rec, err := s.store.Get(ctx, userID)
	if errors.Is(err, questions.ErrNotFound) {
		return s.stale(ctx, "relay.close", origin)
	}
	if err != nil {
		return s.fail(ctx, "relay.close", fmt.Errorf("relay: load question: %w", err))
	}
	if err := checkTransition(ctx, rec, true, EventClose); err != nil {
		if isInvalidTransition(err) {
			return s.stale(ctx, "relay.close", origin)
		}
		return s.fail(ctx, "relay.close", err)
	}

	err = s.store.Delete(ctx, userID)
	switch {
	case errors.Is(err, questions.ErrNotFound):
		return s.stale(ctx, "relay.close", origin)
	case questions.IsPersistError(err):
		s.warnPersist(ctx, err)
	case err != nil:
		return s.fail(ctx, "relay.close", fmt.Errorf("relay: delete question: %w", err))
	}

	if err := s.out.Edit(ctx, origin, notice.Closed()); err != nil {
		logger.Warn(ctx, "relay", "relay.close.edit",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, "relay", "relay.close", slog.String("status", "ok"))
	return nil
}

// Deliver sends text from the administrator to the asker of the armed
// question. It returns ErrNothingArmed when no question is armed, in which
// case nothing is sent and nothing changes.
func (s *Service) Deliver(ctx context.Context, actorID int64, text string) error {
	if !s.IsAdmin(actorID) {
		return s.reject(ctx, "relay.deliver", 0)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.FindArmed(ctx)
	if errors.Is(err, questions.ErrNotFound) {
		logger.Info(ctx, "relay", "relay.ignore",
			slog.String("status", "skip"),
			slog.String("cause", "nothing_armed"),
		)
		return ErrNothingArmed
	}
	if err != nil {
		return s.fail(ctx, "relay.deliver", fmt.Errorf("relay: find armed: %w", err))
	}
	ctx = logger.WithQuestion(ctx, rec.UserID)
	if err := checkTransition(ctx, rec, true, EventDeliver); err != nil {
		return s.fail(ctx, "relay.deliver", err)
	}

	if _, sendErr := s.out.Send(ctx, rec.UserID, s.formatter.AnswerNotice(text)); sendErr != nil {
		s.drop(ctx, rec.UserID)
		if _, err := s.out.Send(ctx, s.adminID, notice.DeliveryFailed(sendErr)); err != nil {
			logger.Warn(ctx, "relay", "relay.deliver.report",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
		logger.Error(ctx, "relay", "relay.deliver",
			slog.String("status", "fail"),
			slog.String("err", sendErr.Error()),
		)
		return &DeliveryError{UserID: rec.UserID, Err: sendErr}
	}

	if err := s.store.MarkAnswered(ctx, rec.UserID); err != nil && !errors.Is(err, questions.ErrNotFound) {
		logger.Warn(ctx, "relay", "relay.deliver.mark",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	s.drop(ctx, rec.UserID)

	if _, err := s.out.Send(ctx, s.adminID, notice.Delivered(rec.UserID)); err != nil {
		logger.Warn(ctx, "relay", "relay.deliver.confirm",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, "relay", "relay.deliver", slog.String("status", "ok"))
	return nil
}

// Pending lists unanswered questions oldest first.
func (s *Service) Pending(ctx context.Context) ([]questions.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, err := s.store.Pending(ctx)
	if err != nil {
		return nil, err
	}
	return questions.SortedByAge(pending), nil
}

// Stats returns the store counters.
func (s *Service) Stats(ctx context.Context) (questions.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Stats(ctx)
}

// drop deletes the record after delivery or a delivery failure.
func (s *Service) drop(ctx context.Context, userID int64) {
	err := s.store.Delete(ctx, userID)
	switch {
	case err == nil, errors.Is(err, questions.ErrNotFound):
	case questions.IsPersistError(err):
		s.warnPersist(ctx, err)
	default:
		logger.Error(ctx, "relay", "relay.drop",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}

func (s *Service) stale(ctx context.Context, event string, origin Message) error {
	logger.Info(ctx, "relay", event,
		slog.String("status", "skip"),
		slog.String("cause", "not_found"),
	)
	if origin.ID != 0 {
		if err := s.out.Edit(ctx, origin, notice.NotFound()); err != nil {
			logger.Warn(ctx, "relay", event+".edit",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
	return questions.ErrNotFound
}

func (s *Service) reject(ctx context.Context, event string, userID int64) error {
	logger.Warn(logger.WithQuestion(ctx, userID), "relay", event,
		slog.String("status", "skip"),
		slog.String("cause", "unauthorized"),
	)
	return ErrUnauthorized
}

func (s *Service) fail(ctx context.Context, event string, err error) error {
	logger.Error(ctx, "relay", event,
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	return err
}

func (s *Service) warnPersist(ctx context.Context, err error) {
	logger.Warn(ctx, "relay", "relay.persist",
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	if s.adminID == 0 {
		return
	}
	if _, sendErr := s.out.Send(ctx, s.adminID, notice.PersistWarning(err)); sendErr != nil {
		logger.Warn(ctx, "relay", "relay.persist.report",
			slog.String("status", "fail"),
			slog.String("err", sendErr.Error()),
		)
	}
}
