package validation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"ceremony/internal/domain"
)

// DefaultMinAnswerRatio is the share of solvable flips that must be
// answered when a deadline submits automatically.
const DefaultMinAnswerRatio = 0.6

var (
	// ErrStopped is returned by Send once Run has returned.
	ErrStopped = xerrors.New("validation engine stopped")
	// ErrNotAnswering rejects answers and submits outside the answering state.
	ErrNotAnswering = xerrors.New("session is not accepting answers")
	// ErrIncomplete rejects a manual submit with unanswered solvable flips.
	ErrIncomplete = xerrors.New("not every solvable flip is answered")
	// ErrUnknownFlip rejects events for flips that are not visible or not solvable.
	ErrUnknownFlip = xerrors.New("flip is not available in this session")
	// ErrNothingToRetry rejects RetrySubmit outside the failed state.
	ErrNothingToRetry = xerrors.New("session has no failed step")
	// ErrFinished is returned by Resume for a run that already ended.
	ErrFinished = xerrors.New("validation already finished")
	// ErrForeignSnapshot is returned by Resume for a snapshot saved under
	// another address.
	ErrForeignSnapshot = xerrors.New("snapshot belongs to another address")
)

// Deps are the engine's collaborators. Chain and Snapshots may be nil.
type Deps struct {
	Fetcher   domain.FlipFetcher
	Keys      domain.KeyExchanger
	Submitter domain.AnswerSubmitter
	Chain     domain.ChainNode
	Snapshots domain.SnapshotStore
}

// Options configure one run.
type Options struct {
	Epoch          domain.Epoch
	Address        domain.Address
	Timing         domain.Timing
	Schedule       Schedule
	MinAnswerRatio float64
	// Now defaults to time.Now.
	Now func() time.Time
	Log logrus.FieldLogger
}

// Engine drives one ceremony.
//
// High-level flow:
//   - StartSession arms every deadline, resolves the short hashes, starts
//     fetching flips and publishes the public flip key.
//   - The short session is committed by Submit or at its deadline, then the
//     long session starts and the reveal goes out once the short session has
//     ended.
//   - The long session is submitted by Submit or at its deadline.
//   - The run succeeds once the reveal and the long answers are mined and
//     fails when a deadline finds too few answers.
type Engine struct {
	deps  Deps
	opts  Options
	log   logrus.FieldLogger
	runID string

	events chan Event
	views  chan View
	done   chan struct{}

	ctx    context.Context
	group  *errgroup.Group
	timers map[string]*time.Timer

	phase   Phase
	started bool
	short   *session
	long    *session

	shortCommitted  bool
	shortRevealed   bool
	longSubmitted   bool
	publicKeySent   bool
	privateKeysSent bool

	revealArmed bool
	keysBusy    bool

	err    error
	result error
}

// New returns an idle engine for a fresh run.
func New(deps Deps, opts Options) *Engine {
	return newEngine(deps, opts, uuid.NewString())
}

func newEngine(deps Deps, opts Options, runID string) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MinAnswerRatio <= 0 {
		opts.MinAnswerRatio = DefaultMinAnswerRatio
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Engine{
		deps:  deps,
		opts:  opts,
		runID: runID,
		log: opts.Log.WithFields(logrus.Fields{
			"run":   runID,
			"epoch": opts.Epoch,
		}),
		events: make(chan Event, 64),
		views:  make(chan View, 1),
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
		phase:  PhaseIdle,
		short:  newSession(domain.ShortSession, StateAnswering),
		long:   newSession(domain.LongSession, StateWaiting),
	}
}

// RunID identifies this run in logs and snapshots.
func (e *Engine) RunID() string { return e.runID }

// Views delivers the latest View after each handled event. Views that are
// not read in time are replaced by newer ones.
func (e *Engine) Views() <-chan View { return e.views }

// Send queues ev for the dispatcher.
func (e *Engine) Send(ctx context.Context, ev Event) error {
	select {
	case <-e.done:
		return ErrStopped
	default:
	}
	select {
	case e.events <- ev:
		return nil
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run dispatches events until the ceremony ends, Cancel is received or ctx
// is done. It returns nil on success or cancel, the failure cause when the
// ceremony fails and ctx.Err() when ctx ends first. Run must be called once.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	e.ctx, e.group = gctx, g
	defer func() {
		cancel()
		for _, t := range e.timers {
			t.Stop()
		}
		_ = g.Wait()
		close(e.done)
	}()

	for {
		select {
		case <-ctx.Done():
			e.releaseAll()
			e.save()
			return ctx.Err()
		case ev := <-e.events:
			e.handle(ev)
			e.save()
			e.publish()
			if e.phase.Terminal() || e.phase == PhaseCancelled {
				return e.result
			}
		}
	}
}

func (e *Engine) handle(ev Event) {
	switch ev := ev.(type) {
	case StartSession:
		e.start()
	case AnswerFlip:
		e.answer(ev)
	case ReportWords:
		e.grade(ev.Hash, domain.GradeReported)
	case ApproveWords:
		g := ev.Grade
		if g == domain.GradeReported {
			g = domain.GradeNone
		}
		e.grade(ev.Hash, g)
	case Favorite:
		e.favorite(ev)
	case Navigate:
		e.navigate(ev)
	case Submit:
		e.submitManually(ev.Session)
	case RetrySubmit:
		e.retry(ev.Session)
	case Cancel:
		e.cancel()

	case hashesResolved:
		e.onHashes(ev)
	case hashPoll:
		e.resolve(e.session(ev.session))
	case flipUpdated:
		e.onFlip(ev.update)
	case fetchDone:
		s := e.session(ev.session)
		for _, h := range ev.hashes {
			delete(s.fetching, h)
		}
	case timerFired:
		e.onTimer(ev.transition)
	case txSent:
		e.onTxSent(ev)
	case txDone:
		e.onTxDone(ev)
	case keyDone:
		e.onKeyDone(ev)
	case keyRetry:
		e.driveKeys()
	}
}

func (e *Engine) session(kind domain.SessionKind) *session {
	if kind == domain.LongSession {
		return e.long
	}
	return e.short
}

func (e *Engine) now() time.Time { return e.opts.Now() }

// spawn runs fn on a worker goroutine owned by the current Run.
func (e *Engine) spawn(fn func(ctx context.Context)) {
	ctx := e.ctx
	e.group.Go(func() error {
		fn(ctx)
		return nil
	})
}

// post hands an event from a worker or timer to the dispatcher.
func (e *Engine) post(ev Event) {
	select {
	case e.events <- ev:
	case <-e.ctx.Done():
	}
}

func (e *Engine) arm(key string, d time.Duration, ev Event) {
	if t, ok := e.timers[key]; ok {
		t.Stop()
	}
	e.timers[key] = time.AfterFunc(d, func() { e.post(ev) })
}

func (e *Engine) armTransition(t Transition) {
	d := e.opts.Schedule.Delay(t, e.opts.Timing, e.now())
	e.log.WithFields(logrus.Fields{"transition": t.String(), "in": d}).Debug("transition armed")
	e.arm(t.String(), d, timerFired{transition: t})
}

func (e *Engine) start() {
	if e.started || e.phase.Terminal() {
		return
	}
	e.started = true
	if e.phase == PhaseIdle || e.phase == PhaseCancelled {
		e.phase = PhaseShort
		if e.shortCommitted {
			e.phase = PhaseLong
		}
	}
	e.log.WithField("phase", e.phase).Info("validation started")

	if e.deps.Chain != nil {
		e.spawn(e.preflight)
	}
	for _, t := range Transitions {
		e.armTransition(t)
	}
	if !e.shortCommitted {
		e.resolve(e.short)
	}
	if e.long.state != StateWaiting {
		e.resolve(e.long)
	}
	e.resumeSteps()
	e.driveKeys()
}

func (e *Engine) preflight(ctx context.Context) {
	st, err := e.deps.Chain.Syncing(ctx)
	switch {
	case err != nil:
		e.log.WithError(err).Warn("sync status unavailable")
	case st.Syncing:
		e.log.WithFields(logrus.Fields{
			"current": st.CurrentBlock,
			"highest": st.HighestBlock,
		}).Warn("node is still syncing")
	}
	ready, err := e.deps.Chain.IsValidationReady(ctx)
	switch {
	case err != nil:
		e.log.WithError(err).Warn("validation readiness unavailable")
	case !ready:
		e.log.Warn("node reports validation is not ready")
	}
}

func (e *Engine) reject(err error) {
	e.err = err
	e.log.WithError(err).Debug("event rejected")
}

func (e *Engine) answer(ev AnswerFlip) {
	s := e.session(ev.Session)
	if s.locked() {
		e.reject(ErrNotAnswering)
		return
	}
	f, ok := s.visible(ev.Hash)
	if !ok || !f.Solvable() || ev.Answer > domain.AnswerRight {
		e.reject(ErrUnknownFlip)
		return
	}
	f.Answer = ev.Answer
	e.err = nil
}

func (e *Engine) grade(hash domain.FlipHash, g domain.Grade) {
	s := e.long
	if s.locked() {
		e.reject(ErrNotAnswering)
		return
	}
	f, ok := s.visible(hash)
	if !ok || !f.Solvable() || !g.Valid() {
		e.reject(ErrUnknownFlip)
		return
	}
	f.Grade = g
	e.err = nil
}

func (e *Engine) favorite(ev Favorite) {
	f, ok := e.session(ev.Session).visible(ev.Hash)
	if !ok {
		e.reject(ErrUnknownFlip)
		return
	}
	f.Favorite = !f.Favorite
}

func (e *Engine) navigate(ev Navigate) {
	s := e.session(ev.Session)
	if len(s.display) == 0 {
		return
	}
	i := s.current + ev.Delta
	if ev.Absolute {
		i = ev.Index
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s.display) {
		i = len(s.display) - 1
	}
	s.current = i
}

func (e *Engine) cancel() {
	e.log.Info("validation cancelled")
	e.phase = PhaseCancelled
	e.releaseAll()
}

func (e *Engine) releaseAll() {
	for _, s := range []*session{e.short, e.long} {
		if s.fetchCancel != nil {
			s.fetchCancel()
		}
		s.release()
	}
}

// fail ends the ceremony.
func (e *Engine) fail(err error) {
	e.phase = PhaseFailed
	e.err = err
	e.result = err
	e.releaseAll()
	e.log.WithError(err).Error("validation failed")
}

func (e *Engine) maybeSucceed() {
	if !e.shortRevealed || !e.longSubmitted {
		return
	}
	e.phase = PhaseSucceeded
	e.err = nil
	e.releaseAll()
	e.log.Info("validation succeeded")
}

func (e *Engine) onTimer(t Transition) {
	e.log.WithField("transition", t.String()).Debug("transition fired")
	switch t {
	case ExtraBump:
		e.replaceExtras()
	case FinalizeShort:
		e.finalize(e.short)
	case ShortDeadline:
		e.shortDeadline()
	case Reveal:
		e.revealArmed = true
		e.maybeReveal()
	case LongDeadline:
		e.longDeadline()
	case FinalizeLong:
		e.finalize(e.long)
	}
}

func (e *Engine) replaceExtras() {
	s := e.short
	if s.replaced || s.state != StateAnswering {
		return
	}
	s.replaced = true
	display, n := ReplaceExtraFlips(s.hashes, s.display, s.flips)
	s.display = display
	if n > 0 {
		e.log.WithField("replaced", n).Info("extra flips swapped in")
	}
}

func (e *Engine) finalize(s *session) {
	if s.finalized {
		return
	}
	n := s.finalize()
	e.log.WithFields(logrus.Fields{
		"session": s.kind.String(),
		"failed":  n,
	}).Info("flips finalized")
}

func (e *Engine) shortDeadline() {
	s := e.short
	if s.state != StateAnswering {
		return
	}
	if e.shortCommitted {
		e.commit()
		return
	}
	if !s.enough(e.opts.MinAnswerRatio) {
		e.fail(xerrors.Errorf("short session: %w", domain.ErrValidationTimeout))
		return
	}
	e.log.Info("short session deadline, submitting answers")
	e.commit()
}

func (e *Engine) longDeadline() {
	s := e.long
	switch s.state {
	case StateWaiting:
		e.fail(xerrors.Errorf("long session never started: %w", domain.ErrValidationTimeout))
	case StateAnswering:
		if !e.longSubmitted && !s.enough(e.opts.MinAnswerRatio) {
			e.fail(xerrors.Errorf("long session: %w", domain.ErrValidationTimeout))
			return
		}
		e.log.Info("long session deadline, submitting answers")
		e.submitLong()
	}
}

func (e *Engine) submitManually(kind domain.SessionKind) {
	s := e.session(kind)
	if s.state != StateAnswering {
		e.reject(ErrNotAnswering)
		return
	}
	if !e.submitted(kind) && !s.complete() {
		e.reject(ErrIncomplete)
		return
	}
	e.err = nil
	if kind == domain.LongSession {
		e.submitLong()
		return
	}
	e.commit()
}

// submitted reports the idempotency flag of a session's first submission.
func (e *Engine) submitted(kind domain.SessionKind) bool {
	if kind == domain.LongSession {
		return e.longSubmitted
	}
	return e.shortCommitted
}

func (e *Engine) retry(kind domain.SessionKind) {
	s := e.session(kind)
	if s.state != StateFailed {
		e.reject(ErrNothingToRetry)
		return
	}
	e.err = nil
	step := s.failedStep
	e.log.WithFields(logrus.Fields{"session": kind.String(), "step": step}).Info("retrying submission")
	switch step {
	case StateCommitting:
		s.state = StateAnswering
		e.commit()
	case StateRevealing:
		s.state = StateCommitted
		e.maybeReveal()
	case StateSubmitting:
		s.state = StateAnswering
		e.submitLong()
	}
}
