package classify

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"security-suite/internal/model"
)

// MaxContentChars bounds the content excerpt placed in the prompt.
const MaxContentChars = 2000

// Generator sends a prompt to a language model and returns the raw text
// of its answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Remote asks a Generator for a JSON verdict.
type Remote struct {
	gen Generator
}

func NewRemote(gen Generator) *Remote {
	return &Remote{gen: gen}
}

func (r *Remote) Classify(ctx context.Context, file model.FileInfo) (model.Verdict, error) {
	text, err := r.gen.Generate(ctx, BuildPrompt(file))
	if err != nil {
		return model.Verdict{}, fmt.Errorf("generate verdict for %s: %w", file.Name, err)
	}
	v, err := ParseVerdict(text)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("parse verdict for %s: %w", file.Name, err)
	}
	return v, nil
}

func BuildPrompt(file model.FileInfo) string {
	var b strings.Builder
	b.WriteString("You are a cybersecurity threat analysis engine. Analyze the following file metadata and content snippet to determine if it represents a security threat.\n")
	fmt.Fprintf(&b, "- Filename: %q\n", file.Name)
	fmt.Fprintf(&b, "- File Type: %q\n", file.Type)
	fmt.Fprintf(&b, "- File Size: %d bytes\n", file.Size)
	fmt.Fprintf(&b, "- Content Snippet (first %d chars):\n```\n%s\n```\n", MaxContentChars, Excerpt(file.Content, MaxContentChars))
	b.WriteString("Based on this information, especially suspicious function calls, obfuscated code, or patterns common in malware, determine if the file is a threat. ")
	b.WriteString("If the content is empty or not applicable (e.g., for a binary file), base your analysis primarily on the filename, type, and common threat vectors associated with them.\n")
	b.WriteString("Respond ONLY with a JSON object matching the provided schema.")
	return b.String()
}

// Excerpt returns at most n characters of s without splitting a rune.
func Excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

type rawVerdict struct {
	IsThreat       *bool   `json:"isThreat"`
	ThreatType     *string `json:"threatType"`
	Recommendation *string `json:"recommendation"`
}

// ParseVerdict decodes a model answer. All three fields are required; a
// fenced ```json block is accepted.
func ParseVerdict(text string) (model.Verdict, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw rawVerdict
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return model.Verdict{}, err
	}
	if raw.IsThreat == nil || raw.ThreatType == nil || raw.Recommendation == nil {
		return model.Verdict{}, fmt.Errorf("verdict is missing required fields")
	}
	return model.Verdict{
		IsThreat:       *raw.IsThreat,
		ThreatType:     *raw.ThreatType,
		Recommendation: *raw.Recommendation,
	}, nil
}
