package app

import (
	"context"
	"crypto/ecdsa"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/services/fetcher"
	"ceremony/internal/services/keyexchange"
	"ceremony/internal/services/submission"
	"ceremony/internal/services/transaction"
	"ceremony/internal/validation"
)

// NewLogger builds the process logger from the log_level and log_json
// settings.
func NewLogger(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, xerrors.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)
	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

// Timing returns the epoch and ceremony timing. Configured values win;
// anything left zero is read from the node.
func (w *Wire) Timing(ctx context.Context) (domain.Epoch, domain.Timing, error) {
	cfg := w.Config
	epoch := domain.Epoch(cfg.Epoch)
	timing := domain.Timing{
		ValidationStart: cfg.ValidationStart,
		ShortSession:    cfg.ShortSession.Duration,
		LongSession:     cfg.LongSession.Duration,
	}

	if epoch == 0 || timing.ValidationStart.IsZero() {
		info, err := w.Node.Epoch(ctx)
		if err != nil {
			return 0, domain.Timing{}, xerrors.Errorf("while reading epoch: %w", err)
		}
		if epoch == 0 {
			epoch = info.Epoch
		}
		if timing.ValidationStart.IsZero() {
			start, err := validationStart(info)
			if err != nil {
				return 0, domain.Timing{}, err
			}
			timing.ValidationStart = start
		}
	}

	if timing.ShortSession == 0 || timing.LongSession == 0 {
		iv, err := w.Node.CeremonyIntervals(ctx)
		if err != nil {
			return 0, domain.Timing{}, xerrors.Errorf("while reading ceremony intervals: %w", err)
		}
		if timing.ShortSession == 0 {
			timing.ShortSession = seconds(iv.ShortSessionDuration)
		}
		if timing.LongSession == 0 {
			timing.LongSession = seconds(iv.LongSessionDuration)
		}
	}
	return epoch, timing, nil
}

// validationStart prefers the running ceremony's start (unix seconds) and
// falls back to the scheduled next validation (RFC3339).
func validationStart(info domain.EpochInfo) (time.Time, error) {
	if info.CurrentValidationStart != "" {
		if sec, err := strconv.ParseInt(info.CurrentValidationStart, 10, 64); err == nil && sec > 0 {
			return time.Unix(sec, 0), nil
		}
	}
	t, err := time.Parse(time.RFC3339, info.NextValidation)
	if err != nil {
		return time.Time{}, &domain.ProtocolError{
			Method:  "dna_epoch",
			Message: "bad nextValidation " + strconv.Quote(info.NextValidation),
		}
	}
	return t, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// NewEngine builds the per-run services for key and returns the validation
// engine. When a snapshot exists for the epoch the run is resumed from it
// and resumed reports true; a finished run yields validation.ErrFinished and
// a snapshot saved under another key validation.ErrForeignSnapshot.
func (w *Wire) NewEngine(ctx context.Context, key *ecdsa.PrivateKey) (e *validation.Engine, resumed bool, err error) {
	epoch, timing, err := w.Timing(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := w.Cache.PruneBefore(epoch); err != nil {
		w.Log.WithError(err).Warn("flip cache prune failed")
	}
	// The previous epoch's run can no longer be resumed.
	if epoch > 0 {
		if err := w.Snapshots.DeleteSnapshot(epoch - 1); err != nil {
			w.Log.WithError(err).Warn("stale snapshot not removed")
		}
	}

	cfg := w.Config
	tx := transaction.New(w.Node, key, cfg.TxOptions(), w.Log)
	deps := validation.Deps{
		Fetcher:   fetcher.New(w.Node, w.Cache, cfg.FetchOptions(), w.Log),
		Keys:      keyexchange.New(w.Node, key, w.Log),
		Submitter: submission.New(tx, w.Node, key, w.Log),
		Chain:     w.Node,
		Snapshots: w.Snapshots,
	}
	opts := validation.Options{
		Epoch:          epoch,
		Address:        tx.From(),
		Timing:         timing,
		Schedule:       cfg.Schedule(),
		MinAnswerRatio: cfg.MinAnswerRatio,
		Log:            w.Log,
	}

	snap, ok, err := w.Snapshots.LoadSnapshot(epoch)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return validation.New(deps, opts), false, nil
	}
	e, err = validation.Resume(snap, deps, opts)
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// WordPairs returns the keyword pairs the node assigned to key for the
// current epoch. The node picks them by the VRF hash of the words seed.
func (w *Wire) WordPairs(ctx context.Context, key *ecdsa.PrivateKey) ([]domain.FlipWordPair, error) {
	seed, err := w.Node.WordsSeed(ctx)
	if err != nil {
		return nil, xerrors.Errorf("words seed: %w", err)
	}
	index, _, err := crypto.VRFEvaluate(key, seed)
	if err != nil {
		return nil, err
	}
	return w.Node.WordPairs(ctx, crypto.AddressOf(&key.PublicKey), index[:])
}
