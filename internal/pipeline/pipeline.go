package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/catalog"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/config"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/results"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/vectorspace"
)

// Pipeline wires the matching stages against one configuration and
// results store.
type Pipeline struct {
	cfg    *config.Config
	store  *results.Store
	logger *slog.Logger
}

// New constructs a Pipeline. A nil logger disables logging.
func New(cfg *config.Config, store *results.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{cfg: cfg, store: store, logger: logger}
}

// corpus holds both serialized catalogs and the ground-truth mapping.
type corpus struct {
	sourceIDs   []string
	sourceTexts []string
	targetIDs   []string
	targetTexts []string
	truth       []catalog.Pair
}

func (c *corpus) sourceTextByID() map[string]string {
	texts := make(map[string]string, len(c.sourceIDs))
	for i, id := range c.sourceIDs {
		texts[id] = c.sourceTexts[i]
	}
	return texts
}

func (c *corpus) targetTextByID() map[string]string {
	texts := make(map[string]string, len(c.targetIDs))
	for i, id := range c.targetIDs {
		texts[id] = c.targetTexts[i]
	}
	return texts
}

func (p *Pipeline) loadCorpus() (*corpus, error) {
	data := p.cfg.Data
	if data.SourceCSV == "" || data.TargetCSV == "" || data.GroundTruthCSV == "" {
		return nil, fmt.Errorf("data.source_csv, data.target_csv, and data.ground_truth_csv must be configured")
	}

	sourceRecords, err := catalog.Load(data.SourceCSV, data.SourceIDColumn)
	if err != nil {
		return nil, fmt.Errorf("load source catalog: %w", err)
	}
	targetRecords, err := catalog.Load(data.TargetCSV, data.TargetIDColumn)
	if err != nil {
		return nil, fmt.Errorf("load target catalog: %w", err)
	}
	truth, err := catalog.LoadGroundTruth(data.GroundTruthCSV, data.TruthSourceColumn, data.TruthTargetColumn)
	if err != nil {
		return nil, fmt.Errorf("load ground truth: %w", err)
	}

	c := &corpus{truth: truth}
	c.sourceIDs, c.sourceTexts = catalog.SerializeAll(sourceRecords, data.SourceFields)
	c.targetIDs, c.targetTexts = catalog.SerializeAll(targetRecords, data.TargetFields)

	p.logger.Info("catalogs loaded",
		logging.Args(
			logging.Int("source_records", len(c.sourceIDs)),
			logging.Int("target_records", len(c.targetIDs)),
			logging.Int("ground_truth_pairs", len(truth)),
		)...)
	return c, nil
}

func (p *Pipeline) vectorOptions() vectorspace.Options {
	return vectorspace.Options{
		MinN:  p.cfg.Retrieval.MinNGram,
		MaxN:  p.cfg.Retrieval.MaxNGram,
		MinDF: p.cfg.Retrieval.MinDF,
	}
}

// recallCutoffs are the list depths recall is reported at.
var recallCutoffs = []int{5, 10, 20, 50}
