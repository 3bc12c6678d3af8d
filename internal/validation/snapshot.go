package validation

import (
	"time"

	"golang.org/x/xerrors"

	"ceremony/internal/domain"
)

// Snapshot captures the resumable state. It is only safe to call from the
// dispatcher or before Run.
func (e *Engine) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		RunID:           e.runID,
		Epoch:           e.opts.Epoch,
		Address:         e.opts.Address,
		Timing:          e.opts.Timing,
		Phase:           string(e.phase),
		Short:           e.short.snapshot(),
		Long:            e.long.snapshot(),
		ShortCommitted:  e.shortCommitted,
		ShortRevealed:   e.shortRevealed,
		LongSubmitted:   e.longSubmitted,
		PublicKeySent:   e.publicKeySent,
		PrivateKeysSent: e.privateKeysSent,
	}
	if e.err != nil {
		snap.Error = e.err.Error()
	}
	return snap
}

func (e *Engine) save() {
	if e.deps.Snapshots == nil {
		return
	}
	if err := e.deps.Snapshots.SaveSnapshot(e.Snapshot()); err != nil {
		e.log.WithError(err).Warn("snapshot not saved")
	}
}

func (s *session) snapshot() domain.SessionSnapshot {
	out := domain.SessionSnapshot{
		Hashes:     append([]domain.FlipHash(nil), s.hashes...),
		Display:    append([]domain.FlipHash(nil), s.display...),
		Flips:      make([]domain.Flip, 0, len(s.hashes)),
		Current:    s.current,
		State:      string(s.state),
		FailedStep: string(s.failedStep),
		Replaced:   s.replaced,
		Finalized:  s.finalized,
		CommitTx:   s.commitTx,
		RevealTx:   s.revealTx,
		SubmitTx:   s.submitTx,
	}
	for _, h := range s.hashes {
		f := *s.flips[h]
		f.Images, f.Orders = nil, [2][]int{}
		out.Flips = append(out.Flips, f)
	}
	return out
}

// restoreSession rebuilds a session with every flip that had not failed
// reset to unresolved, so the fetch pipeline runs again from scratch.
func restoreSession(kind domain.SessionKind, snap domain.SessionSnapshot, fallback State) *session {
	state := State(snap.State)
	if state == "" {
		state = fallback
	}
	s := newSession(kind, state)
	s.failedStep = State(snap.FailedStep)
	s.resolved = len(snap.Hashes) > 0
	s.hashes = append(s.hashes, snap.Hashes...)
	s.display = append(s.display, snap.Display...)
	s.current = snap.Current
	s.replaced = snap.Replaced
	s.finalized = snap.Finalized
	s.commitTx = snap.CommitTx
	s.revealTx = snap.RevealTx
	s.submitTx = snap.SubmitTx
	for i := range snap.Flips {
		f := snap.Flips[i]
		if f.Status != domain.FlipFailed {
			f.Status = domain.FlipUnresolved
		}
		s.flips[f.Hash] = &f
	}
	for _, h := range s.hashes {
		if _, ok := s.flips[h]; !ok {
			s.flips[h] = &domain.Flip{Hash: h, Extra: true}
		}
	}

	// A step interrupted before its transaction hash was recorded may or
	// may not have been broadcast. It waits for an explicit retry.
	interrupted := map[State]domain.TxHash{
		StateCommitting: s.commitTx,
		StateRevealing:  s.revealTx,
		StateSubmitting: s.submitTx,
	}
	if tx, ok := interrupted[s.state]; ok && tx == "" {
		s.failedStep = s.state
		s.state = StateFailed
	}
	return s
}

// Resume rebuilds an engine from snap. Timing and epoch come from the
// snapshot; deadlines are re-armed from the same validation start when
// StartSession is handled. A non-zero opts.Address must match the address
// the snapshot was saved under.
func Resume(snap domain.Snapshot, deps Deps, opts Options) (*Engine, error) {
	phase := Phase(snap.Phase)
	if phase.Terminal() {
		return nil, xerrors.Errorf("resume epoch %d: %w", snap.Epoch, ErrFinished)
	}
	if opts.Address != (domain.Address{}) && snap.Address != opts.Address {
		return nil, xerrors.Errorf("resume epoch %d as %s: %w", snap.Epoch, opts.Address.Hex(), ErrForeignSnapshot)
	}
	opts.Epoch = snap.Epoch
	opts.Address = snap.Address
	opts.Timing = snap.Timing

	e := newEngine(deps, opts, snap.RunID)
	if phase == "" || phase == PhaseCancelled {
		phase = PhaseIdle
	}
	e.phase = phase
	e.short = restoreSession(domain.ShortSession, snap.Short, StateAnswering)
	e.long = restoreSession(domain.LongSession, snap.Long, StateWaiting)
	e.shortCommitted = snap.ShortCommitted
	e.shortRevealed = snap.ShortRevealed
	e.longSubmitted = snap.LongSubmitted
	e.publicKeySent = snap.PublicKeySent
	e.privateKeysSent = snap.PrivateKeysSent
	if snap.Error != "" && (e.short.state == StateFailed || e.long.state == StateFailed) {
		e.err = xerrors.New(snap.Error)
	}

	e.log.WithField("saved_at", snap.SavedAt.Format(time.RFC3339)).Info("validation resumed")
	return e, nil
}
