package config

const (
	defaultWorkDir              = "~/.local/share/ermatch"
	defaultExportDir            = "~/.local/share/ermatch/exports"
	defaultCachePath            = "~/.cache/ermatch/verifier_cache.json"
	defaultResultsDB            = "~/.local/share/ermatch/results.db"
	defaultSourceIDColumn       = "id"
	defaultTargetIDColumn       = "id"
	defaultTruthSourceColumn    = "idAmazon"
	defaultTruthTargetColumn    = "idGoogleBase"
	defaultPrefixTokens         = 2
	defaultMinCandidates        = 20
	defaultMinNGram             = 2
	defaultMaxNGram             = 3
	defaultMinDF                = 2
	defaultTopK                 = 50
	defaultGlobalTopK           = 200
	defaultHighConfidence       = 0.90
	defaultLowConfidence        = 0.30
	defaultNegativesPerPositive = 3
	defaultGoldSeed             = 42
	defaultBlockThreshold       = 0.30
	defaultLLMBaseURL           = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel             = "gpt-4o-mini"
	defaultLLMTimeoutSeconds    = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// The source catalog names products in a "title" column, the target
// catalog in a "name" column. Price stays out of the default
// serialization: formatting noise outweighs its signal.
func defaultSourceFields() []string {
	return []string{"title", "description", "manufacturer"}
}

func defaultTargetFields() []string {
	return []string{"name", "description", "manufacturer"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			ExportDir: defaultExportDir,
			CachePath: defaultCachePath,
			ResultsDB: defaultResultsDB,
		},
		Data: Data{
			SourceIDColumn:    defaultSourceIDColumn,
			TargetIDColumn:    defaultTargetIDColumn,
			TruthSourceColumn: defaultTruthSourceColumn,
			TruthTargetColumn: defaultTruthTargetColumn,
			SourceFields:      defaultSourceFields(),
			TargetFields:      defaultTargetFields(),
		},
		Blocking: Blocking{
			PrefixTokens:  defaultPrefixTokens,
			MinCandidates: defaultMinCandidates,
		},
		Retrieval: Retrieval{
			MinNGram:   defaultMinNGram,
			MaxNGram:   defaultMaxNGram,
			MinDF:      defaultMinDF,
			TopK:       defaultTopK,
			GlobalTopK: defaultGlobalTopK,
		},
		Gate: Gate{
			HighConfidence: defaultHighConfidence,
			LowConfidence:  defaultLowConfidence,
		},
		Gold: Gold{
			NegativesPerPositive: defaultNegativesPerPositive,
			Seed:                 defaultGoldSeed,
		},
		Direct: Direct{
			BlockThreshold: defaultBlockThreshold,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
