package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"ceremony/internal/app"
)

var (
	configPath string
	home       string
	nodeURL    string
	apiKey     string
	passphrase string
	logLevel   string
	epoch      uint16

	wire *app.Wire
)

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:           "ceremony",
		Short:         "Validation ceremony client",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, log)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Close()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default <home>/config.toml when present)")
	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.ceremony)")
	root.PersistentFlags().StringVar(&nodeURL, "node", "", "node RPC URL (e.g. http://127.0.0.1:9009)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", "", "node RPC api key")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the key")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Uint16Var(&epoch, "epoch", 0, "epoch (default read from the node)")

	root.AddCommand(importKeyCmd(), addressCmd(), flipKeysCmd(), wordsCmd(), statusCmd(), runCmd())
	return root.Execute()
}

// loadConfig reads the config file and applies flags that were set.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()
	if home != "" {
		cfg.Home = home
	}
	path := configPath
	if path == "" {
		candidate := filepath.Join(cfg.Home, "config.toml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		loaded, err := app.LoadConfig(path)
		if err != nil {
			return app.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("home") {
		cfg.Home = home
	}
	if flags.Changed("node") {
		cfg.NodeURL = nodeURL
	}
	if flags.Changed("api-key") {
		cfg.APIKey = apiKey
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("epoch") {
		cfg.Epoch = epoch
	}
	if cfg.Home == "" {
		return app.Config{}, xerrors.New("no home directory configured")
	}
	return cfg, nil
}

func requirePassphrase() error {
	if passphrase == "" {
		return xerrors.New("passphrase required (-p)")
	}
	return nil
}
