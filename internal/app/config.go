package app

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"

	"ceremony/internal/services/fetcher"
	"ceremony/internal/services/transaction"
	"ceremony/internal/validation"
)

// Duration is a time.Duration read from TOML strings such as "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return xerrors.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds runtime wiring options for building the app.
//
// Epoch, ValidationStart, ShortSession and LongSession are read from the
// node when left zero.
type Config struct {
	Home        string   `toml:"home"`     // data directory, e.g. $HOME/.ceremony
	NodeURL     string   `toml:"node_url"` // e.g. http://127.0.0.1:9009
	APIKey      string   `toml:"api_key"`
	HTTPTimeout Duration `toml:"http_timeout"`

	Epoch           uint16    `toml:"epoch"`
	ValidationStart time.Time `toml:"validation_start"`
	ShortSession    Duration  `toml:"short_session"`
	LongSession     Duration  `toml:"long_session"`

	MinAnswerRatio  float64  `toml:"min_answer_ratio"`
	FlipPacing      Duration `toml:"flip_pacing"`
	HashPoll        Duration `toml:"hash_poll"`
	MinedPoll       Duration `toml:"mined_poll"`
	KeyRetry        Duration `toml:"key_retry"`
	MaxMinedPolls   int      `toml:"max_mined_polls"`
	MaxSendAttempts int      `toml:"max_send_attempts"`
	LongPollWindow  Duration `toml:"long_poll_window"`

	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`

	HTTP *http.Client `toml:"-"` // optional; built from HTTPTimeout when nil
}

// DefaultConfig returns the production settings rooted at ~/.ceremony.
func DefaultConfig() Config {
	sched := validation.DefaultSchedule()
	tx := transaction.DefaultOptions()
	home := ".ceremony"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".ceremony")
	}
	return Config{
		Home:            home,
		NodeURL:         "http://127.0.0.1:9009",
		HTTPTimeout:     Duration{30 * time.Second},
		MinAnswerRatio:  validation.DefaultMinAnswerRatio,
		FlipPacing:      Duration{fetcher.DefaultOptions().Pacing},
		HashPoll:        Duration{sched.HashPoll},
		MinedPoll:       Duration{tx.MinedPoll},
		KeyRetry:        Duration{sched.KeyRetry},
		MaxMinedPolls:   tx.MaxMinedPolls,
		MaxSendAttempts: tx.SendAttempts,
		LongPollWindow:  Duration{sched.LongPollWindow},
		LogLevel:        "info",
	}
}

// LoadConfig reads path over DefaultConfig. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, xerrors.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, xerrors.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Schedule returns the engine schedule with the configured overrides.
func (c Config) Schedule() validation.Schedule {
	s := validation.DefaultSchedule()
	if c.HashPoll.Duration > 0 {
		s.HashPoll = c.HashPoll.Duration
	}
	if c.KeyRetry.Duration > 0 {
		s.KeyRetry = c.KeyRetry.Duration
	}
	if c.LongPollWindow.Duration > 0 {
		s.LongPollWindow = c.LongPollWindow.Duration
	}
	return s
}

// TxOptions returns the transaction retry policy.
func (c Config) TxOptions() transaction.Options {
	o := transaction.DefaultOptions()
	if c.MinedPoll.Duration > 0 {
		o.MinedPoll = c.MinedPoll.Duration
	}
	if c.MaxMinedPolls > 0 {
		o.MaxMinedPolls = c.MaxMinedPolls
	}
	if c.MaxSendAttempts > 0 {
		o.SendAttempts = c.MaxSendAttempts
	}
	return o
}

// FetchOptions returns the flip fetch pacing.
func (c Config) FetchOptions() fetcher.Options {
	o := fetcher.DefaultOptions()
	if c.FlipPacing.Duration > 0 {
		o.Pacing = c.FlipPacing.Duration
	}
	return o
}
