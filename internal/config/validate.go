package config

import (
	"fmt"
)

// Validate ensures the configuration is usable. The LLM API key is
// checked separately via RequireLLM because only verification runs
// need it.
func (c *Config) Validate() error {
	if err := c.validateBlocking(); err != nil {
		return err
	}
	if err := c.validateRetrieval(); err != nil {
		return err
	}
	if err := c.validateGate(); err != nil {
		return err
	}
	if err := c.validateGold(); err != nil {
		return err
	}
	if err := c.validateDirect(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBlocking() error {
	return ensurePositiveMap(map[string]int{
		"blocking.prefix_tokens":  c.Blocking.PrefixTokens,
		"blocking.min_candidates": c.Blocking.MinCandidates,
	})
}

func (c *Config) validateRetrieval() error {
	if err := ensurePositiveMap(map[string]int{
		"retrieval.min_ngram": c.Retrieval.MinNGram,
		"retrieval.max_ngram": c.Retrieval.MaxNGram,
		"retrieval.min_df":    c.Retrieval.MinDF,
		"retrieval.top_k":     c.Retrieval.TopK,
	}); err != nil {
		return err
	}
	if c.Retrieval.MinNGram > c.Retrieval.MaxNGram {
		return fmt.Errorf("retrieval.min_ngram (%d) must not exceed retrieval.max_ngram (%d)", c.Retrieval.MinNGram, c.Retrieval.MaxNGram)
	}
	if c.Retrieval.GlobalTopK < 0 {
		return fmt.Errorf("retrieval.global_top_k must not be negative, got %d", c.Retrieval.GlobalTopK)
	}
	return nil
}

func (c *Config) validateGate() error {
	if c.Gate.HighConfidence < 0 || c.Gate.HighConfidence > 1 {
		return fmt.Errorf("gate.high_confidence must be between 0 and 1, got %v", c.Gate.HighConfidence)
	}
	if c.Gate.LowConfidence < 0 || c.Gate.LowConfidence > 1 {
		return fmt.Errorf("gate.low_confidence must be between 0 and 1, got %v", c.Gate.LowConfidence)
	}
	if c.Gate.LowConfidence >= c.Gate.HighConfidence {
		return fmt.Errorf("gate.low_confidence (%v) must be below gate.high_confidence (%v)", c.Gate.LowConfidence, c.Gate.HighConfidence)
	}
	return nil
}

func (c *Config) validateGold() error {
	if c.Gold.NegativesPerPositive <= 0 {
		return fmt.Errorf("gold.negatives_per_positive must be positive, got %d", c.Gold.NegativesPerPositive)
	}
	return nil
}

func (c *Config) validateDirect() error {
	if c.Direct.BlockThreshold < 0 || c.Direct.BlockThreshold > 1 {
		return fmt.Errorf("direct.block_threshold must be between 0 and 1, got %v", c.Direct.BlockThreshold)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}
	return nil
}
