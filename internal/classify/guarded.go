package classify

import (
	"context"
	"log/slog"

	"security-suite/internal/model"
)

// FailedVerdict is returned in place of any remote failure.
var FailedVerdict = model.Verdict{
	IsThreat:       false,
	ThreatType:     "Analysis Failed",
	Recommendation: "Could not determine status. Manual review suggested.",
}

// Guarded never returns an error: failures of the wrapped classifier are
// logged and replaced by FailedVerdict.
type Guarded struct {
	inner  Classifier
	logger *slog.Logger
}

func NewGuarded(inner Classifier, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{inner: inner, logger: logger}
}

func (g *Guarded) Classify(ctx context.Context, file model.FileInfo) (model.Verdict, error) {
	v, err := g.inner.Classify(ctx, file)
	if err != nil {
		g.logger.Error("Error analyzing file", "file", file.Name, "error", err)
		return FailedVerdict, nil
	}
	return v, nil
}
