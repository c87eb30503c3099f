// Package classify decides whether a file looks like a threat, either by
// asking a remote language model or with a local extension heuristic.
package classify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"security-suite/internal/model"
)

const DefaultModel = "gemini-2.5-flash"

// Classifier produces a verdict for one file.
type Classifier interface {
	Classify(ctx context.Context, file model.FileInfo) (model.Verdict, error)
}

type Config struct {
	APIKey   string
	Model    string
	CacheTTL time.Duration
}

var missingKeyNotice sync.Once

// New picks the classifier for cfg. Without an API key the local heuristic
// is used and a warning is logged once per process. With a key, remote
// verdicts are cached and any remote failure turns into the fixed
// "Analysis Failed" verdict.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		missingKeyNotice.Do(func() {
			logger.Warn("API key not set. AI features will be disabled.")
		})
		return Heuristic{}, nil
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	gen, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, err
	}
	logger.Info("Remote threat analysis enabled", "model", cfg.Model)
	return NewGuarded(NewCached(NewRemote(gen), cfg.CacheTTL), logger), nil
}
