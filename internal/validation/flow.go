package validation

import (
	"context"

	"github.com/sirupsen/logrus"

	"ceremony/internal/domain"
)

func (e *Engine) resolve(s *session) {
	kind := s.kind
	e.spawn(func(ctx context.Context) {
		infos, err := e.deps.Fetcher.Hashes(ctx, kind)
		e.post(hashesResolved{session: kind, infos: infos, err: err})
	})
}

func (e *Engine) onHashes(ev hashesResolved) {
	s := e.session(ev.session)
	log := e.log.WithField("session", s.kind.String())
	if ev.err != nil {
		if s.finalized {
			return
		}
		log.WithError(ev.err).Warn("hash list unavailable, polling again")
		e.arm("hashes-"+s.kind.String(), e.opts.Schedule.HashPoll, hashPoll{session: s.kind})
		return
	}

	fetchAll := s.kind == domain.ShortSession ||
		!e.opts.Schedule.keepPollingLong(e.opts.Timing, e.now())
	first := !s.resolved
	ready := s.load(ev.infos, fetchAll)
	if first {
		log.WithField("flips", len(s.hashes)).Info("hash list resolved")
	}
	e.fetch(s, ready)

	if fetchAll {
		return
	}
	for _, info := range ev.infos {
		if !info.Ready {
			e.arm("hashes-"+s.kind.String(), e.opts.Schedule.HashPoll, hashPoll{session: s.kind})
			return
		}
	}
}

// fetch streams updates for hashes into the dispatcher. The batch stops
// when its session is finalized or the run ends.
func (e *Engine) fetch(s *session, hashes []domain.FlipHash) {
	if len(hashes) == 0 {
		return
	}
	if s.fetchCtx == nil {
		s.fetchCtx, s.fetchCancel = context.WithCancel(e.ctx)
	}
	for _, h := range hashes {
		s.fetching[h] = true
	}
	ctx, kind, epoch := s.fetchCtx, s.kind, e.opts.Epoch
	e.spawn(func(context.Context) {
		updates := make(chan domain.FlipUpdate)
		forwarded := make(chan struct{})
		go func() {
			defer close(forwarded)
			for u := range updates {
				e.post(flipUpdated{update: u})
			}
		}()
		err := e.deps.Fetcher.Fetch(ctx, epoch, kind, hashes, updates)
		close(updates)
		<-forwarded
		if err != nil && ctx.Err() == nil {
			e.log.WithError(err).Warn("flip fetch stopped")
		}
		e.post(fetchDone{session: kind, hashes: hashes})
	})
}

func (e *Engine) onFlip(u domain.FlipUpdate) {
	s := e.session(u.Session)
	if !s.merge(u) {
		return
	}
	f := s.flips[u.Hash]
	if s == e.short && e.shortCommitted {
		f.Release()
	}
	entry := e.log.WithFields(logrus.Fields{
		"session": s.kind.String(),
		"hash":    u.Hash,
		"status":  f.Status.String(),
	})
	if u.Err != nil && f.Status == domain.FlipFailed {
		entry.WithError(u.Err).Warn("flip cannot be decoded")
		return
	}
	entry.Debug("flip updated")
}

// submit runs send on a worker and waits for the transaction to be mined.
func (e *Engine) submit(s *session, step State, send func(context.Context) (domain.TxHash, error)) {
	kind := s.kind
	e.spawn(func(ctx context.Context) {
		tx, err := send(ctx)
		if err != nil {
			e.post(txDone{session: kind, step: step, err: err})
			return
		}
		e.post(txSent{session: kind, step: step, tx: tx})
		err = e.deps.Submitter.WaitMined(ctx, tx)
		e.post(txDone{session: kind, step: step, tx: tx, err: err})
	})
}

// await resumes waiting for a transaction broadcast by an earlier run.
func (e *Engine) await(s *session, step State, tx domain.TxHash) {
	kind := s.kind
	e.spawn(func(ctx context.Context) {
		err := e.deps.Submitter.WaitMined(ctx, tx)
		e.post(txDone{session: kind, step: step, tx: tx, err: err})
	})
}

func (e *Engine) commit() {
	s := e.short
	if e.shortCommitted {
		s.state = StateCommitted
		e.onCommitted()
		return
	}
	s.state = StateCommitting
	if s.commitTx != "" {
		e.await(s, StateCommitting, s.commitTx)
		return
	}
	data, err := s.serialize()
	if err != nil {
		e.stepFailed(s, StateCommitting, err)
		return
	}
	epoch := e.opts.Epoch
	e.submit(s, StateCommitting, func(ctx context.Context) (domain.TxHash, error) {
		return e.deps.Submitter.CommitShortAnswers(ctx, epoch, data)
	})
}

func (e *Engine) onCommitted() {
	e.log.WithField("tx", e.short.commitTx).Info("short answers committed")
	e.short.release()
	if e.phase == PhaseShort {
		e.phase = PhaseLong
	}
	if e.long.state == StateWaiting {
		e.long.state = StateAnswering
		e.resolve(e.long)
	}
	e.maybeReveal()
}

// maybeReveal sends the reveal once the commit is confirmed and the short
// session has ended.
func (e *Engine) maybeReveal() {
	s := e.short
	if !e.revealArmed || s.state != StateCommitted {
		return
	}
	if e.shortRevealed {
		s.state = StateRevealed
		e.maybeSucceed()
		return
	}
	s.state = StateRevealing
	if s.revealTx != "" {
		e.await(s, StateRevealing, s.revealTx)
		return
	}
	data, err := s.serialize()
	if err != nil {
		e.stepFailed(s, StateRevealing, err)
		return
	}
	epoch := e.opts.Epoch
	e.submit(s, StateRevealing, func(ctx context.Context) (domain.TxHash, error) {
		return e.deps.Submitter.RevealShortAnswers(ctx, epoch, data)
	})
}

func (e *Engine) submitLong() {
	s := e.long
	if e.longSubmitted {
		s.state = StateSubmitted
		e.maybeSucceed()
		return
	}
	s.state = StateSubmitting
	if s.submitTx != "" {
		e.await(s, StateSubmitting, s.submitTx)
		return
	}
	data, err := s.serialize()
	if err != nil {
		e.stepFailed(s, StateSubmitting, err)
		return
	}
	epoch := e.opts.Epoch
	e.submit(s, StateSubmitting, func(ctx context.Context) (domain.TxHash, error) {
		return e.deps.Submitter.SubmitLongAnswers(ctx, epoch, data)
	})
}

// resumeSteps picks up submissions that were in flight when the run was
// snapshotted.
func (e *Engine) resumeSteps() {
	if s := e.short; s.state == StateCommitting && s.commitTx != "" {
		e.await(s, StateCommitting, s.commitTx)
	}
	if s := e.short; s.state == StateRevealing && s.revealTx != "" {
		e.await(s, StateRevealing, s.revealTx)
	}
	if s := e.long; s.state == StateSubmitting && s.submitTx != "" {
		e.await(s, StateSubmitting, s.submitTx)
	}
}

func (e *Engine) onTxSent(ev txSent) {
	s := e.session(ev.session)
	switch ev.step {
	case StateCommitting:
		s.commitTx = ev.tx
	case StateRevealing:
		s.revealTx = ev.tx
	case StateSubmitting:
		s.submitTx = ev.tx
	}
	e.log.WithFields(logrus.Fields{
		"session": s.kind.String(),
		"step":    ev.step,
		"tx":      ev.tx,
	}).Info("transaction broadcast")
}

func (e *Engine) onTxDone(ev txDone) {
	s := e.session(ev.session)
	if s.state != ev.step {
		return
	}
	if ev.err != nil {
		e.stepFailed(s, ev.step, ev.err)
		return
	}
	switch ev.step {
	case StateCommitting:
		e.shortCommitted = true
		s.state = StateCommitted
		e.onCommitted()
	case StateRevealing:
		e.shortRevealed = true
		s.state = StateRevealed
		e.log.WithField("tx", s.revealTx).Info("short answers revealed")
		e.maybeSucceed()
	case StateSubmitting:
		e.longSubmitted = true
		s.state = StateSubmitted
		e.log.WithField("tx", s.submitTx).Info("long answers submitted")
		e.maybeSucceed()
	}
}

// stepFailed parks the session until RetrySubmit.
func (e *Engine) stepFailed(s *session, step State, err error) {
	s.state = StateFailed
	s.failedStep = step
	e.err = err
	e.log.WithError(err).WithFields(logrus.Fields{
		"session":  s.kind.String(),
		"step":     step,
		"network":  domain.IsNetwork(err),
		"protocol": domain.IsProtocol(err),
	}).Error("submission failed, waiting for retry")
}

// driveKeys publishes the public flip key, then distributes the private
// one. Only one key operation is in flight at a time.
func (e *Engine) driveKeys() {
	if e.deps.Keys == nil || e.keysBusy || e.privateKeysSent || e.phase.Terminal() {
		return
	}
	e.keysBusy = true
	epoch := e.opts.Epoch
	if !e.publicKeySent {
		e.spawn(func(ctx context.Context) {
			err := e.deps.Keys.PublishPublicKey(ctx, epoch)
			e.post(keyDone{step: publishKey, sent: err == nil, err: err})
		})
		return
	}
	e.spawn(func(ctx context.Context) {
		sent, err := e.deps.Keys.DistributePrivateKeys(ctx, epoch)
		e.post(keyDone{step: distributeKeys, sent: sent, err: err})
	})
}

func (e *Engine) onKeyDone(ev keyDone) {
	e.keysBusy = false
	if ev.err != nil {
		e.log.WithError(ev.err).Warn("flip key exchange failed, retrying")
	}
	switch {
	case ev.step == publishKey && ev.sent:
		e.publicKeySent = true
		e.driveKeys()
		return
	case ev.step == distributeKeys && ev.sent:
		e.privateKeysSent = true
		return
	}
	e.arm("keys", e.opts.Schedule.KeyRetry, keyRetry{})
}

func (e *Engine) publish() {
	v := e.View()
	select {
	case <-e.views:
	default:
	}
	select {
	case e.views <- v:
	default:
	}
}

// View returns the observable state. It is only safe to call from the
// dispatcher or before Run.
func (e *Engine) View() View {
	v := View{
		RunID: e.runID,
		Epoch: e.opts.Epoch,
		Phase: e.phase,
		Short: e.short.view(),
		Long:  e.long.view(),

		PublicKeySent:   e.publicKeySent,
		PrivateKeysSent: e.privateKeysSent,
	}
	if e.err != nil {
		v.Error = e.err.Error()
	}
	return v
}
