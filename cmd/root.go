package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/config"
	"github.com/abhisek/hanzo/internal/distractor"
	"github.com/abhisek/hanzo/internal/engine"
	"github.com/abhisek/hanzo/internal/llm"
	"github.com/abhisek/hanzo/internal/session"
	"github.com/abhisek/hanzo/internal/store"
	"github.com/abhisek/hanzo/internal/unlock"
)

var rootCmd = &cobra.Command{
	Use:   "hanzo",
	Short: "Chinese vocabulary trainer",
	Long:  "Hanzo is a terminal app for learning Chinese vocabulary deck by deck, with adaptive practice sessions and deck exams.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides HANZO_DATABASE_PATH)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: hanzo.yaml in the data dir)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(decksCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration, applying the --config and --db flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	db, _ := cmd.Flags().GetString("db")
	return config.Load(config.Options{ConfigFile: file, DBPath: db})
}

// env is everything a command needs to talk to the engine.
type env struct {
	cfg    *config.Config
	log    *logrus.Logger
	store  *store.Store
	engine *engine.Engine

	logCloser io.Closer
}

// openEnv loads config, opens the store and builds the engine. When tui
// is set, logs go to a file so they do not draw over the screen.
func openEnv(cmd *cobra.Command, tui bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	if tui && logCfg.File == "" {
		if logCfg.File, err = config.TUILogFile(); err != nil {
			return nil, fmt.Errorf("resolve log file: %w", err)
		}
	}
	log, closer, err := config.NewLogger(logCfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	rt := &env{cfg: cfg, log: log, logCloser: closer}

	dbPath, err := cfg.DBPath()
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	rt.store, err = store.Open(dbPath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		rt.Close()
		return nil, err
	}

	ctx := cmd.Context()
	deps := engine.Deps{
		Catalog: cat,
		KV:      rt.store.KV(),
		Events:  rt.store.EventRepo(),
		Log:     log,
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, rt.store.EventRepo(), log)
	switch {
	case errors.Is(err, llm.ErrDisabled):
	case err != nil:
		log.WithError(err).Warn("LLM provider not configured, using catalog distractors only")
	default:
		deps.Distractors = distractor.NewAssistedGenerator(distractor.NewCatalogGenerator(nil), provider, log)
	}

	rt.engine, err = engine.New(ctx, deps, engineOptions(cfg))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load progress: %w", err)
	}
	log.WithFields(logrus.Fields{
		"db":      dbPath,
		"catalog": cfg.Catalog.Path,
		"config":  cfg.File,
	}).Debug("environment ready")
	return rt, nil
}

func engineOptions(cfg *config.Config) engine.Options {
	return engine.Options{
		Session: session.Options{
			Length:         cfg.Session.Length,
			MaxRepetitions: cfg.Session.MaxRepetitions,
		},
		Unlock: unlock.Policy{
			Base:        cfg.Unlock.Base,
			ReleaseRate: cfg.Unlock.ReleaseRate,
		},
		PassRatio: cfg.Exam.PassRatio,
	}
}

func (rt *env) Close() {
	if rt.store != nil {
		rt.store.Close()
	}
	if rt.logCloser != nil {
		rt.logCloser.Close()
	}
}
