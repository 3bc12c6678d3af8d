package main

import (
	"crypto/ecdsa"
	"net/http"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/node/nodetest"
)

type options struct {
	addr       string
	epoch      uint16
	startIn    time.Duration
	short      time.Duration
	long       time.Duration
	shortFlips int
	extraFlips int
	longFlips  int
	candidates int
	minedAfter int
	address    string
	apiKey     string
}

func main() {
	var o options
	cmd := &cobra.Command{
		Use:          "devnode",
		Short:        "In-memory ceremony node for local development",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.addr, "listen", ":9009", "listen address")
	f.Uint16Var(&o.epoch, "epoch", 1, "epoch number")
	f.DurationVar(&o.startIn, "start-in", 10*time.Second, "time until the validation starts")
	f.DurationVar(&o.short, "short", 2*time.Minute, "short session duration")
	f.DurationVar(&o.long, "long", 30*time.Minute, "long session duration")
	f.IntVar(&o.shortFlips, "short-flips", 5, "short session flips")
	f.IntVar(&o.extraFlips, "extra-flips", 2, "extra short session flips")
	f.IntVar(&o.longFlips, "long-flips", 10, "long session flips")
	f.IntVar(&o.candidates, "candidates", 3, "private key package candidates")
	f.IntVar(&o.minedAfter, "mined-after", 1, "receipt polls before a transaction is mined")
	f.StringVar(&o.address, "address", "", "participant address to register as Verified")
	f.StringVar(&o.apiKey, "api-key", "", "required api key")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(o options) error {
	log := logrus.StandardLogger()

	n, err := newNode(o)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(log))
	r.Mount("/", n.Handler())

	log.WithFields(logrus.Fields{
		"listen":     o.addr,
		"epoch":      o.epoch,
		"validation": time.Now().Add(o.startIn).Format(time.RFC3339),
	}).Info("devnode listening")
	return http.ListenAndServe(o.addr, r)
}

func newNode(o options) (*nodetest.Node, error) {
	n := nodetest.New(domain.Epoch(o.epoch))
	n.APIKey = o.apiKey
	n.MinedAfter = o.minedAfter
	n.SetTiming(domain.Timing{
		ValidationStart: time.Now().Add(o.startIn),
		ShortSession:    o.short,
		LongSession:     o.long,
	})

	if o.address != "" {
		if !common.IsHexAddress(o.address) {
			return nil, xerrors.Errorf("address %q is not a hex address", o.address)
		}
		n.SetIdentity(domain.Identity{
			Address: common.HexToAddress(o.address),
			State:   "Verified",
			Online:  true,
		})
	}

	cands := make([]*ecdsa.PublicKey, 0, o.candidates)
	for i := 0; i < o.candidates; i++ {
		k, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		cands = append(cands, &k.PublicKey)
	}
	n.SetCandidates(cands...)

	for i := 0; i < o.shortFlips+o.extraFlips; i++ {
		opts := nodetest.FlipOptions{Extra: i >= o.shortFlips}
		if _, err := n.AddFlip(domain.ShortSession, opts); err != nil {
			return nil, err
		}
	}
	for i := 0; i < o.longFlips; i++ {
		opts := nodetest.FlipOptions{Words: [2]uint32{uint32(2 * i), uint32(2*i + 1)}}
		if _, err := n.AddFlip(domain.LongSession, opts); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func accessLog(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start),
				"request":  middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
