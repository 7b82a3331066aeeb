package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeData(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CachePath) == "" {
		c.Paths.CachePath = defaultCachePath
	}
	if c.Paths.CachePath, err = expandPath(c.Paths.CachePath); err != nil {
		return fmt.Errorf("paths.cache_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.ResultsDB) == "" {
		c.Paths.ResultsDB = defaultResultsDB
	}
	if c.Paths.ResultsDB, err = expandPath(c.Paths.ResultsDB); err != nil {
		return fmt.Errorf("paths.results_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeData() error {
	var err error
	if strings.TrimSpace(c.Data.SourceCSV) != "" {
		if c.Data.SourceCSV, err = expandPath(c.Data.SourceCSV); err != nil {
			return fmt.Errorf("data.source_csv: %w", err)
		}
	}
	if strings.TrimSpace(c.Data.TargetCSV) != "" {
		if c.Data.TargetCSV, err = expandPath(c.Data.TargetCSV); err != nil {
			return fmt.Errorf("data.target_csv: %w", err)
		}
	}
	if strings.TrimSpace(c.Data.GroundTruthCSV) != "" {
		if c.Data.GroundTruthCSV, err = expandPath(c.Data.GroundTruthCSV); err != nil {
			return fmt.Errorf("data.ground_truth_csv: %w", err)
		}
	}
	if strings.TrimSpace(c.Data.SourceIDColumn) == "" {
		c.Data.SourceIDColumn = defaultSourceIDColumn
	}
	if strings.TrimSpace(c.Data.TargetIDColumn) == "" {
		c.Data.TargetIDColumn = defaultTargetIDColumn
	}
	if strings.TrimSpace(c.Data.TruthSourceColumn) == "" {
		c.Data.TruthSourceColumn = defaultTruthSourceColumn
	}
	if strings.TrimSpace(c.Data.TruthTargetColumn) == "" {
		c.Data.TruthTargetColumn = defaultTruthTargetColumn
	}
	if len(c.Data.SourceFields) == 0 {
		c.Data.SourceFields = defaultSourceFields()
	}
	if len(c.Data.TargetFields) == 0 {
		c.Data.TargetFields = defaultTargetFields()
	}
	return nil
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "console", "json":
	default:
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
