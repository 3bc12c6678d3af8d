package app

import (
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"ceremony/internal/node"
	"ceremony/internal/services/identity"
	"ceremony/internal/store"
)

// Wire bundles the long-lived stores, services and clients for the CLI.
type Wire struct {
	Config    Config
	Log       logrus.FieldLogger
	Keys      *store.KeyFileStore
	Snapshots *store.SnapshotFileStore
	Cache     *store.FlipBoltCache
	Identity  *identity.Service
	Node      *node.Client
	HTTP      *http.Client
}

// NewWire constructs the dependency graph from cfg. A nil log means the
// logrus standard logger. Close releases the flip cache.
func NewWire(cfg Config, log logrus.FieldLogger) (*Wire, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, xerrors.Errorf("create home %s: %w", cfg.Home, err)
	}

	// File-based stores
	keys := store.NewKeyFileStore(cfg.Home)
	snaps := store.NewSnapshotFileStore(cfg.Home)
	cache, err := store.OpenFlipCache(cfg.Home)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout.Duration}
	}

	return &Wire{
		Config:    cfg,
		Log:       log,
		Keys:      keys,
		Snapshots: snaps,
		Cache:     cache,
		Identity:  identity.New(keys),
		Node:      node.New(cfg.NodeURL, cfg.APIKey, httpClient, log),
		HTTP:      httpClient,
	}, nil
}

// Close releases resources held by the wire.
func (w *Wire) Close() error {
	if w.Cache == nil {
		return nil
	}
	return w.Cache.Close()
}
