// Package reader owns the platform tag-reader lifecycle: establish a PCSC
// context, poll for a tag, connect exactly once, and enforce the
// single-active-session invariant with a 60-second watchdog. It is I/O
// only — the multi-APDU dance over the connected card belongs to
// internal/chip, driven by the orchestrator.
package reader

import (
	"context"
	"time"

	"github.com/ebfe/scard"
	"github.com/rs/zerolog"

	"github.com/chimpdao/nfcauth/internal/apdu"
	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// Watchdog is the hard session limit from the platform's tag-reading API.
const Watchdog = 60 * time.Second

// Manager enforces the at-most-one-active-session invariant across the
// process. A single Manager is constructed once at startup and shared by
// every operation.
type Manager struct {
	active chan struct{}
	log    *zerolog.Logger
}

// NewManager returns a Manager with no active session. log may be nil to
// disable lifecycle Debug logging.
func NewManager(log *zerolog.Logger) *Manager {
	m := &Manager{active: make(chan struct{}, 1), log: log}
	m.active <- struct{}{}
	return m
}

// Session wraps one connected card for the duration of a single operation.
type Session struct {
	mgr  *Manager
	ctx  *scard.Context
	card *scard.Card
	done bool
	log  *zerolog.Logger
}

// SetLogger overrides the session's logger, used by the orchestrator to
// attach a per-operation correlation id to lifecycle events emitted after
// Open returns.
func (s *Session) SetLogger(log *zerolog.Logger) {
	s.log = log
}

// Open establishes a PCSC context, waits for exactly one tag to enter the
// field, and connects to it. It fails immediately if a session is already
// active elsewhere in the process, and aborts with Timeout if no tag
// appears within Watchdog, or with UserCancelled if ctx is cancelled first.
func (m *Manager) Open(ctx context.Context) (*Session, error) {
	select {
	case <-m.active:
	default:
		return nil, apperrors.New(apperrors.Validation, "a reader session is already active")
	}

	sess, err := m.open(ctx)
	if err != nil {
		m.active <- struct{}{}
		return nil, err
	}
	logOrNop(m.log).Debug().Msg("reader session opened")
	return sess, nil
}

func (m *Manager) open(ctx context.Context) (*Session, error) {
	watchdogCtx, cancel := context.WithTimeout(ctx, Watchdog)
	defer cancel()

	sctx, err := scard.EstablishContext()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Transport, "establishing pcsc context")
	}

	readers, err := sctx.ListReaders()
	if err != nil {
		sctx.Release()
		return nil, apperrors.Wrap(err, apperrors.Transport, "listing pcsc readers")
	}
	if len(readers) == 0 {
		sctx.Release()
		return nil, apperrors.New(apperrors.Transport, "no pcsc readers available")
	}

	index, err := waitForTag(watchdogCtx, sctx, readers)
	if err != nil {
		sctx.Release()
		return nil, err
	}

	card, err := sctx.Connect(readers[index], scard.ShareExclusive, scard.ProtocolAny)
	if err != nil {
		sctx.Release()
		return nil, apperrors.Wrap(err, apperrors.Transport, "connecting to tag")
	}

	logOrNop(m.log).Debug().Str("reader", readers[index]).Msg("tag connected")
	return &Session{mgr: m, ctx: sctx, card: card, log: m.log}, nil
}

// waitForTag polls reader status until exactly one reader reports a
// present tag, the watchdog expires, or ctx is cancelled by the user.
// More than one reader simultaneously reporting a tag is rejected — the
// session layer has no way to pick between them safely.
//
// GetStatusChange blocks until the next event with no way to pass a
// context directly, so a pending call is unblocked via Context.Cancel
// from the watchdog/cancellation branch of the select below.
func waitForTag(ctx context.Context, sctx *scard.Context, readers []string) (int, error) {
	rs := make([]scard.ReaderState, len(readers))
	for i := range rs {
		rs[i].Reader = readers[i]
		rs[i].CurrentState = scard.StateUnaware
	}

	for {
		present, multi := scanPresence(rs)
		if multi > 1 {
			return -1, apperrors.New(apperrors.Validation, "more than one tag detected, use one tag at a time")
		}
		if multi == 1 {
			return present, nil
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- sctx.GetStatusChange(rs, -1)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return -1, apperrors.Wrap(err, apperrors.Transport, "polling for tag presence")
			}
		case <-ctx.Done():
			_ = sctx.Cancel()
			<-errCh
			if ctx.Err() == context.DeadlineExceeded {
				return -1, apperrors.New(apperrors.Timeout, "no tag presented within the session watchdog")
			}
			return -1, apperrors.New(apperrors.UserCancelled, "session cancelled while waiting for a tag")
		}
	}
}

// scanPresence reports which reader index (if any) currently shows
// StatePresent, and how many readers do.
func scanPresence(rs []scard.ReaderState) (index, count int) {
	index = -1
	for i := range rs {
		if rs[i].EventState&scard.StatePresent != 0 {
			count++
			index = i
		}
		rs[i].CurrentState = rs[i].EventState
	}
	return index, count
}

// Card exposes the connected card as the minimal apdu.Card surface.
func (s *Session) Card() apdu.Card {
	return s.card
}

// Close disconnects the card, releases the PCSC context, and frees the
// single-session slot. Safe to call more than once.
func (s *Session) Close() error {
	if s.done {
		return nil
	}
	s.done = true

	var err error
	if dErr := s.card.Disconnect(scard.ResetCard); dErr != nil {
		err = apperrors.Wrap(dErr, apperrors.Transport, "disconnecting tag")
	}
	if rErr := s.ctx.Release(); rErr != nil && err == nil {
		err = apperrors.Wrap(rErr, apperrors.Transport, "releasing pcsc context")
	}

	logOrNop(s.log).Debug().Err(err).Msg("reader session closed")
	s.mgr.active <- struct{}{}
	return err
}

// Invalidate closes the session and tags the closure with a short
// user-visible reason (card removal, multi-tag, or any APDU-layer
// failure mid-operation).
func (s *Session) Invalidate(reason string) error {
	logOrNop(s.log).Debug().Str("reason", reason).Msg("reader session invalidated")
	_ = s.Close()
	return apperrors.New(apperrors.Transport, reason)
}

// logOrNop returns a disabled logger when log is nil.
func logOrNop(log *zerolog.Logger) zerolog.Logger {
	if log == nil {
		return zerolog.Nop()
	}
	return *log
}
