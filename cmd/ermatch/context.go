package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/config"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/pipeline"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/results"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		format := cfg.Logging.Format
		if format == "console" {
			format = "text"
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: format,
		})
	})
	return c.logger, c.loggerErr
}

// openStore opens the results database; callers own the Close.
func (c *commandContext) openStore() (*results.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return results.Open(cfg.Paths.ResultsDB)
}

func (c *commandContext) newPipeline(store *results.Store) (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, store, logging.NewComponentLogger(logger, "pipeline")), nil
}
