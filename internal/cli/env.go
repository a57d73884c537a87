package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sadopc/pathtrack/internal/config"
	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/logging"
	"github.com/sadopc/pathtrack/internal/store"
	"github.com/sadopc/pathtrack/internal/tracker"
)

// env is what every command needs: configuration, logging and the store.
type env struct {
	cfg   *config.Config
	store *store.Store
	log   zerolog.Logger

	logCloser io.Closer
}

func defaultConfigHint() string {
	return config.DefaultPath()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, string, error) {
	path := flags.configFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}

	if f := cmd.Flag("document"); f != nil && f.Changed {
		cfg.Document = flags.document
	}
	if f := cmd.Flag("db"); f != nil && f.Changed {
		cfg.DBPath = flags.dbPath
	}
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, path, nil
}

func setup(cmd *cobra.Command, flags *globalFlags) (*env, error) {
	cfg, _, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logCfg.File = cfg.Log.File
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	closer, err := logging.Init(logCfg)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &env{
		cfg:       cfg,
		store:     s,
		log:       logging.Component("cli"),
		logCloser: closer,
	}, nil
}

func (e *env) Close() error {
	return errors.Join(e.store.Close(), e.logCloser.Close())
}

// source is the document the user selected: a stored override wins over
// the configured one.
func (e *env) source() string {
	if src := e.store.GetDocumentSource(); src != "" {
		return src
	}
	return e.cfg.Document
}

// loadState loads the learning path and the stored progress into a fresh
// State. A corrupt progress value is logged and treated as empty.
func (e *env) loadState(ctx context.Context) (*tracker.Tracker, *tracker.State, error) {
	loader := curriculum.NewLoader(e.source(), e.cfg.FetchTimeout())
	doc, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	tr := tracker.New(e.store)
	st := tracker.NewState()
	if err := tr.Init(st); err != nil {
		e.log.Warn().Err(err).Msg("ignoring unreadable progress")
	}
	if _, err := tr.ApplyDocument(st, tr.BeginLoad(st), doc); err != nil {
		e.log.Warn().Err(err).Msg("ignoring unreadable progress")
	}
	return tr, st, nil
}
