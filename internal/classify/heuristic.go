package classify

import (
	"context"
	"strings"

	"security-suite/internal/model"
)

// SuspiciousExtensions are matched as plain name suffixes.
var SuspiciousExtensions = []string{"exe", "dll", "zip", "js", "dat", "vbs"}

var (
	SuspiciousVerdict = model.Verdict{
		IsThreat:       true,
		ThreatType:     "Suspicious File Type",
		Recommendation: "Manual review recommended.",
	}
	CleanVerdict = model.Verdict{
		IsThreat:       false,
		ThreatType:     "Clean",
		Recommendation: "No Action Needed",
	}
)

// Heuristic flags files by name only. It never fails.
type Heuristic struct{}

func (Heuristic) Classify(_ context.Context, file model.FileInfo) (model.Verdict, error) {
	name := strings.ToLower(file.Name)
	for _, ext := range SuspiciousExtensions {
		if strings.HasSuffix(name, ext) {
			return SuspiciousVerdict, nil
		}
	}
	return CleanVerdict, nil
}
