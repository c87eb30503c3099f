// Package scan runs a file selection through a classifier one file at a
// time.
package scan

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"security-suite/internal/classify"
	"security-suite/internal/model"
)

const (
	// DefaultDelay paces the scan between two files.
	DefaultDelay = 100 * time.Millisecond
	// LargeFileThreshold is the size from which non-text files are sent
	// without content.
	LargeFileThreshold = 500000
	// excerptBytes is enough to hold MaxContentChars of UTF-8.
	excerptBytes = 4 * classify.MaxContentChars
)

type Progress struct {
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	Current string `json:"current"`
}

type Report struct {
	ID          string             `json:"id"`
	Results     []model.ScanResult `json:"results"`
	Summary     model.ScanSummary  `json:"summary"`
	CompletedAt time.Time          `json:"completedAt"`
}

type Option func(*Orchestrator)

func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithDelay sets the pause between files; zero disables it.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

type Orchestrator struct {
	classifier classify.Classifier
	clock      clockwork.Clock
	delay      time.Duration
	logger     *slog.Logger
}

func NewOrchestrator(c classify.Classifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier: c,
		clock:      clockwork.NewRealClock(),
		delay:      DefaultDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run classifies files in selection order, never two at once. A
// classifier error for one file becomes that file's result and does not
// stop the rest. Only ctx cancellation aborts the run.
func (o *Orchestrator) Run(ctx context.Context, files []File, onProgress func(Progress)) (Report, error) {
	report := Report{
		ID:      uuid.NewString(),
		Results: make([]model.ScanResult, 0, len(files)),
	}
	o.logger.Info("Scan started", "scan_id", report.ID, "files", len(files))

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		info := o.fileInfo(f)
		verdict, err := o.classifier.Classify(ctx, info)
		if err != nil {
			o.logger.Error("Error analyzing file", "file", f.Name, "error", err)
			verdict = classify.FailedVerdict
		}
		report.Results = append(report.Results, model.ScanResult{
			File:    model.ScannedFile{Name: f.Name, Size: f.Size},
			Verdict: verdict,
		})
		if verdict.IsThreat {
			report.Summary.ThreatsFound++
		}
		if onProgress != nil {
			onProgress(Progress{Done: i + 1, Total: len(files), Current: f.Name})
		}
		if i < len(files)-1 && o.delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-o.clock.After(o.delay):
			}
		}
	}

	report.CompletedAt = o.clock.Now()
	report.Summary.FilesScanned = len(files)
	report.Summary.ScanTime = report.CompletedAt.Local().Format("15:04:05")
	o.logger.Info("Scan completed", "scan_id", report.ID, "files", report.Summary.FilesScanned, "threats", report.Summary.ThreatsFound)
	return report, nil
}

// fileInfo builds the classification request. Content is an excerpt of at
// most MaxContentChars and stays empty for large non-text files.
func (o *Orchestrator) fileInfo(f File) model.FileInfo {
	info := model.FileInfo{Name: f.Name, Size: f.Size, Type: f.Type}
	declared := knownType(f.Type)
	if declared && !IsTextType(f.Type) && f.Size >= LargeFileThreshold {
		return info
	}
	if f.Open == nil {
		return info
	}
	rc, err := f.Open()
	if err != nil {
		o.logger.Warn("Failed to read file", "file", f.Name, "error", err)
		return info
	}
	defer rc.Close()

	head := make([]byte, excerptBytes)
	n, err := io.ReadFull(rc, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		o.logger.Warn("Failed to read file", "file", f.Name, "error", err)
		return info
	}
	head = head[:n]

	if !declared {
		info.Type = sniff(head)
	}
	if IsTextType(info.Type) || f.Size < LargeFileThreshold {
		info.Content = classify.Excerpt(strings.ToValidUTF8(string(head), ""), classify.MaxContentChars)
	}
	return info
}
