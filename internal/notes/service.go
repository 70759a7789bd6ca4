package notes

import (
	"context"
	"time"

	"github.com/roach88/notes-sidecar/internal/journal"
	"github.com/roach88/notes-sidecar/internal/lock"
	"github.com/roach88/notes-sidecar/internal/logger"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// LockName is the mutation lock namespace shared by all Notes operations.
const LockName = "notes"

// DefaultMaxFolderDepth bounds recursive folder traversal.
const DefaultMaxFolderDepth = 64

// Recorder receives one entry per mutating operation.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	// AppName is the scripting target, "Notes" by default.
	AppName string

	MaxFolderDepth int

	// Journal is optional.
	Journal Recorder

	InvocationID string
	Logger       *logger.Logger

	// Now is overridable for tests.
	Now func() time.Time
}

// Service implements the Notes commands on top of a Reader and a Writer.
type Service struct {
	reader Reader
	writer Writer
	locker lock.Acquirer

	appName      string
	maxDepth     int
	journal      Recorder
	invocationID string
	log          *logger.Logger
	now          func() time.Time
}

// NewService wires the two automation channels and the mutation lock.
func NewService(r Reader, w Writer, l lock.Acquirer, opts Options) *Service {
	s := &Service{
		reader:       r,
		writer:       w,
		locker:       l,
		appName:      opts.AppName,
		maxDepth:     opts.MaxFolderDepth,
		journal:      opts.Journal,
		invocationID: opts.InvocationID,
		log:          opts.Logger,
		now:          opts.Now,
	}
	if s.appName == "" {
		s.appName = "Notes"
	}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxFolderDepth
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// guarded runs a read-only operation under the mutation lock.
func guarded[T any](ctx context.Context, s *Service, op string, body func() (T, error)) (T, error) {
	res, err := lock.With(ctx, s.locker, LockName, body)
	s.logResult(op, "", err)
	return res, err
}

// mutating runs a mutation under the mutation lock and journals its outcome
// before the lock is released. target is read after body returns, so a body
// may fill it in once the affected identifier is known.
func mutating[T any](ctx context.Context, s *Service, op string, target *string, body func() (T, error)) (T, error) {
	res, err := lock.With(ctx, s.locker, LockName, func() (T, error) {
		started := s.now()
		res, err := body()
		s.record(ctx, op, *target, started, err)
		return res, err
	})
	s.logResult(op, *target, err)
	return res, err
}

func (s *Service) record(ctx context.Context, op, target string, started time.Time, opErr error) {
	if s.journal == nil {
		return
	}

	e := journal.Entry{
		InvocationID: s.invocationID,
		Command:      op,
		TargetID:     target,
		Outcome:      journal.OutcomeOK,
		StartedAt:    started,
		FinishedAt:   s.now(),
	}
	if opErr != nil {
		e.Outcome = journal.OutcomeError
		e.ErrorCode = string(sidecar.CodeOf(opErr))
	}
	if err := s.journal.Record(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("op", op).Msg("journal write failed")
	}
}

func (s *Service) logResult(op, target string, err error) {
	if err != nil {
		s.log.Debug().Str("op", op).Str("target", target).
			Str("code", string(sidecar.CodeOf(err))).Msg("operation failed")
		return
	}
	s.log.Info().Str("op", op).Str("target", target).Msg("operation completed")
}
