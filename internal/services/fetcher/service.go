package fetcher

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"ceremony/internal/domain"
	"ceremony/internal/protocol/flip"
)

// Options tunes pacing and backoff.
type Options struct {
	// Pacing is the delay between consecutive body requests.
	Pacing time.Duration
	// BackoffUnit is multiplied by 2^attempt for retries.
	BackoffUnit time.Duration
}

// DefaultOptions returns the production policy.
func DefaultOptions() Options {
	return Options{Pacing: time.Second, BackoffUnit: time.Second}
}

// Service fetches and decodes flips.
type Service struct {
	node  domain.FlipNode
	cache domain.FlipCache
	opts  Options
	log   logrus.FieldLogger
}

// New returns a fetcher. cache may be nil. A nil log means the logrus
// standard logger.
func New(node domain.FlipNode, cache domain.FlipCache, opts Options, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{node: node, cache: cache, opts: opts, log: log}
}

// Hashes resolves the hash list for a session in canonical order.
func (s *Service) Hashes(ctx context.Context, kind domain.SessionKind) ([]domain.FlipHashInfo, error) {
	var (
		out []domain.FlipHashInfo
		err error
	)
	if kind == domain.LongSession {
		out, err = s.node.LongHashes(ctx)
	} else {
		out, err = s.node.ShortHashes(ctx)
	}
	if err != nil {
		return nil, xerrors.Errorf("resolve %s hashes: %w", kind, err)
	}
	return out, nil
}

type pending struct {
	hash     domain.FlipHash
	attempts int
	due      time.Time
}

// Fetch streams updates for hashes until all are final or ctx ends.
func (s *Service) Fetch(
	ctx context.Context,
	epoch domain.Epoch,
	kind domain.SessionKind,
	hashes []domain.FlipHash,
	updates chan<- domain.FlipUpdate,
) error {
	queue := make([]*pending, 0, len(hashes))
	for _, h := range hashes {
		queue = append(queue, &pending{hash: h})
	}
	log := s.log.WithFields(logrus.Fields{"epoch": epoch, "session": kind.String()})

	first := true
	for len(queue) > 0 {
		next := queue[0]
		for _, p := range queue[1:] {
			if p.due.Before(next.due) {
				next = p
			}
		}
		wait := time.Until(next.due)
		if !first && wait < s.opts.Pacing {
			wait = s.opts.Pacing
		}
		if wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
		first = false

		upd := s.fetchOne(ctx, epoch, kind, next.hash)
		next.attempts++
		select {
		case updates <- upd:
		case <-ctx.Done():
			return ctx.Err()
		}

		entry := log.WithFields(logrus.Fields{"hash": next.hash, "status": upd.Status.String(), "attempt": next.attempts})
		if upd.Status.Terminal() {
			entry.Debug("flip resolved")
			queue = remove(queue, next)
			continue
		}
		backoff := s.opts.BackoffUnit << uint(next.attempts)
		next.due = time.Now().Add(backoff)
		entry.WithError(upd.Err).WithField("retry_in", backoff).Debug("flip pending")
	}
	return nil
}

func remove(queue []*pending, p *pending) []*pending {
	for i, q := range queue {
		if q == p {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}

// fetchOne performs a single attempt and never returns a decode failure as
// an error: it is folded into the update.
func (s *Service) fetchOne(ctx context.Context, epoch domain.Epoch, kind domain.SessionKind, hash domain.FlipHash) domain.FlipUpdate {
	upd := domain.FlipUpdate{Session: kind, Hash: hash, Status: domain.FlipUnresolved}

	ct, err := s.ciphertext(ctx, epoch, hash)
	if err != nil {
		upd.Err = err
		if domain.IsProtocol(err) {
			upd.Status = domain.FlipMissing
		}
		return upd
	}
	upd.Status = domain.FlipFetched

	keys, err := s.node.FlipKeys(ctx, hash)
	if err != nil {
		upd.Err = err
		return upd
	}

	decoded, err := flip.Decode(ct, keys)
	if err != nil {
		upd.Status = domain.FlipFailed
		upd.Err = err
		return upd
	}
	upd.Status = domain.FlipDecoded
	upd.Images = decoded.Images
	upd.Orders = decoded.Orders

	if kind == domain.LongSession {
		words, err := s.node.Words(ctx, hash)
		if err != nil {
			s.log.WithError(err).WithField("hash", hash).Warn("keywords unavailable")
		} else {
			upd.Keywords = &words
		}
	}
	return upd
}

func (s *Service) ciphertext(ctx context.Context, epoch domain.Epoch, hash domain.FlipHash) (domain.FlipCiphertext, error) {
	if s.cache != nil {
		ct, ok, err := s.cache.GetFlip(epoch, hash)
		if err != nil {
			s.log.WithError(err).WithField("hash", hash).Warn("flip cache read failed")
		} else if ok && !empty(ct) {
			return ct, nil
		}
	}
	ct, err := s.node.GetFlip(ctx, hash)
	if err != nil {
		return domain.FlipCiphertext{}, err
	}
	if empty(ct) {
		return domain.FlipCiphertext{}, &domain.ProtocolError{Method: "flip_get", Message: "flip body is empty"}
	}
	if s.cache != nil {
		if err := s.cache.PutFlip(epoch, hash, ct); err != nil {
			s.log.WithError(err).WithField("hash", hash).Warn("flip cache write failed")
		}
	}
	return ct, nil
}

// empty reports a reply that carries no ciphertext. Such a flip is treated
// as missing and never cached.
func empty(ct domain.FlipCiphertext) bool {
	blank := func(h string) bool { return h == "" || h == "0x" }
	return blank(ct.PublicHex) || blank(ct.PrivateHex)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Compile-time assertion that Service implements domain.FlipFetcher.
var _ domain.FlipFetcher = (*Service)(nil)
