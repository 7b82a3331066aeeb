package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	ExportDir string `toml:"export_dir"`
	CachePath string `toml:"cache_path"`
	ResultsDB string `toml:"results_db"`
}

// Data locates the two catalog files and the ground-truth mapping.
type Data struct {
	SourceCSV         string   `toml:"source_csv"`
	TargetCSV         string   `toml:"target_csv"`
	GroundTruthCSV    string   `toml:"ground_truth_csv"`
	SourceIDColumn    string   `toml:"source_id_column"`
	TargetIDColumn    string   `toml:"target_id_column"`
	TruthSourceColumn string   `toml:"truth_source_column"`
	TruthTargetColumn string   `toml:"truth_target_column"`
	SourceFields      []string `toml:"source_fields"`
	TargetFields      []string `toml:"target_fields"`
}

// Blocking contains blocking-index parameters.
type Blocking struct {
	PrefixTokens  int `toml:"prefix_tokens"`
	MinCandidates int `toml:"min_candidates"`
}

// Retrieval contains vector-space and candidate-generation parameters.
type Retrieval struct {
	MinNGram   int `toml:"min_ngram"`
	MaxNGram   int `toml:"max_ngram"`
	MinDF      int `toml:"min_df"`
	TopK       int `toml:"top_k"`
	GlobalTopK int `toml:"global_top_k"`
}

// Gate contains the confidence-gate thresholds.
type Gate struct {
	HighConfidence float64 `toml:"high_confidence"`
	LowConfidence  float64 `toml:"low_confidence"`
}

// Gold contains labeled-pair generation parameters for the baseline.
type Gold struct {
	NegativesPerPositive int   `toml:"negatives_per_positive"`
	Seed                 int64 `toml:"seed"`
}

// Direct contains parameters for the LLM-direct baseline, which skips
// the confidence gate and sends every gold pair above a similarity
// floor to the verifier.
type Direct struct {
	BlockThreshold float64 `toml:"block_threshold"`
}

// LLM contains verifier connection settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ermatch.
//
// Configuration sections by subsystem:
//   - Paths: working directory, cache, results database, CSV exports
//   - Data: catalog CSV locations, id columns, serialized fields
//   - Blocking: blocking-index key shape and weak-tier expansion
//   - Retrieval: n-gram vector space and candidate depth
//   - Gate: auto-match / auto-reject confidence thresholds
//   - Gold: labeled-pair sampling for the lexical baseline
//   - Direct: similarity floor for the LLM-direct baseline
//   - LLM: verifier connection settings
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Data      Data      `toml:"data"`
	Blocking  Blocking  `toml:"blocking"`
	Retrieval Retrieval `toml:"retrieval"`
	Gate      Gate      `toml:"gate"`
	Gold      Gold      `toml:"gold"`
	Direct    Direct    `toml:"direct"`
	LLM       LLM       `toml:"llm"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ermatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ermatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories runs write into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.WorkDir,
		c.Paths.ExportDir,
		filepath.Dir(c.Paths.CachePath),
		filepath.Dir(c.Paths.ResultsDB),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains verifier connection settings in the shape the
// verifier client consumes.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// GetLLM returns the verifier LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}

// RequireLLM verifies the settings a verification run needs. The key is
// optional everywhere else, so Validate leaves it alone.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/ermatch/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'ermatch config init')", defaultPath)
	}
	return nil
}
