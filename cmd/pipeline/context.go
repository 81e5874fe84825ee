package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/config"
	"videothingy/media-pipeline/internal/db"
	"videothingy/media-pipeline/internal/ffmpeg"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.LogLevel = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the configured logger writing to out. serve logs to stdout,
// one-shot commands to stderr so their results stay on stdout.
func (c *commandContext) logger(out io.Writer) (*logrus.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return config.NewLogger(cfg.LogLevel, cfg.LogFormat, out), nil
}

func newProcessor(cfg *config.Config, log *logrus.Logger) *ffmpeg.Processor {
	runner := ffmpeg.NewExecRunner(cfg.CommandTimeout(), log)
	return ffmpeg.New(runner, cfg.PipelineSettings(), log)
}

func openStore(cfg *config.Config, log *logrus.Logger) (db.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgrest:
		store, err := db.NewPostgrestStore(cfg.SupabaseURL, cfg.SupabaseKey, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreSQLite:
		store, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("SQLite job store opened")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
