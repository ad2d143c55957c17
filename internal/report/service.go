// Package report renders HTML reports from a finance snapshot and stores
// them under a stable, dated name.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/finance-copilot/internal/store"
	"github.com/rs/zerolog"
)

// SnapshotSource supplies the state a report is computed from.
type SnapshotSource interface {
	Snapshot() store.Snapshot
}

// Service generates and stores reports.
type Service struct {
	source    SnapshotSource
	generator *Generator
	output    Output
	now       func() time.Time
	log       zerolog.Logger
}

// NewService wires a snapshot source to an output.
func NewService(source SnapshotSource, output Output, log zerolog.Logger) *Service {
	return &Service{
		source:    source,
		generator: NewGenerator(),
		output:    output,
		now:       time.Now,
		log:       log,
	}
}

// Generate renders the report for reportType from the current snapshot and
// returns the stable location it was stored at.
func (s *Service) Generate(ctx context.Context, reportType string) (string, error) {
	html, err := s.generator.Render(reportType, s.source.Snapshot())
	if err != nil {
		return "", fmt.Errorf("Generate: %w", err)
	}

	name := FileName(reportType, s.now())
	location, err := s.output.Store(ctx, name, html)
	if err != nil {
		return "", fmt.Errorf("Generate: store %s: %w", name, err)
	}

	s.log.Info().
		Str("report_type", reportType).
		Str("location", location).
		Int("bytes", len(html)).
		Msg("Report generated")
	return location, nil
}
