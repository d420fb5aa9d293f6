// Package pipeline converts a category document into one rendered file per
// record.
//
// Records run through a fixed state machine: loaded, pre-shaped, front
// matter serialized, flattened, statblock serialized, text replaced and
// handed off. A failing record is logged and counted; its siblings keep
// going. Records are fanned out over a bounded worker pool and cancellation
// stops issuing new records while in-flight ones finish.
package pipeline

//go:generate mockgen -destination=mock/mock_service.go -package=pipelinemock github.com/KirkDiggler/rpg-statblocks/internal/orchestrators/pipeline Service

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/assets"
	"github.com/KirkDiggler/rpg-statblocks/internal/document"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/observe"
	"github.com/KirkDiggler/rpg-statblocks/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-statblocks/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/ledger"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/output"
)

// Service defines the interface for the conversion pipeline
type Service interface {
	// Run converts every record of one category document.
	// Returns errors.InvalidArgument when the document cannot be unwrapped
	// Returns errors.NotFound for an unconfigured category
	// Returns the context error, together with the summary, when canceled
	Run(ctx context.Context, input *RunInput) (*RunOutput, error)
}

// CategoryConfig binds a category to its strategy and output.
type CategoryConfig struct {
	Strategy adjustments.Strategy
	Template document.Template
	Writer   output.Writer
	// Assets attaches images after FlattenForDisplay. Optional.
	Assets assets.Attacher
}

// Validate validates the CategoryConfig
func (c *CategoryConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("category config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Strategy == nil {
		vb.RequiredField("Strategy")
	}
	if c.Writer == nil {
		vb.RequiredField("Writer")
	}
	if err := vb.Build(); err != nil {
		return err
	}
	return c.Template.Validate()
}

// Config holds the dependencies for the pipeline orchestrator
type Config struct {
	Categories map[string]*CategoryConfig
	// Ledger skips records that did not change since the last run. Optional.
	Ledger ledger.Repository
	// Metrics defaults to observe.Default().
	Metrics     *observe.Metrics
	Clock       clock.Clock
	IDGenerator idgen.Generator
	// Workers defaults to runtime.NumCPU().
	Workers int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if len(c.Categories) == 0 {
		vb.RequiredField("Categories")
	}
	if c.Workers < 0 {
		vb.Field("Workers", "cannot be negative")
	}
	if err := vb.Build(); err != nil {
		return err
	}

	for name, cat := range c.Categories {
		if err := cat.Validate(); err != nil {
			return errors.Wrapf(err, "invalid category %s", name)
		}
	}
	return nil
}

type orchestrator struct {
	categories map[string]*CategoryConfig
	ledger     ledger.Repository
	metrics    *observe.Metrics
	clock      clock.Clock
	idGen      idgen.Generator
	workers    int
}

// NewOrchestrator creates a new pipeline orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		categories: cfg.Categories,
		ledger:     cfg.Ledger,
		metrics:    cfg.Metrics,
		clock:      cfg.Clock,
		idGen:      cfg.IDGenerator,
		workers:    cfg.Workers,
	}
	if o.metrics == nil {
		o.metrics = observe.Default()
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.idGen == nil {
		o.idGen = idgen.NewBatch()
	}
	if o.workers == 0 {
		o.workers = runtime.NumCPU()
	}
	return o, nil
}

// categoryLabel is used in run log lines, e.g. "Monster done".
func categoryLabel(category string) string {
	return cases.Title(language.English).String(category)
}

func (o *orchestrator) Run(ctx context.Context, input *RunInput) (*RunOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	cat, ok := o.categories[input.Category]
	if !ok {
		return nil, errors.NotFoundf("category %q is not configured", input.Category).
			WithMeta("category", input.Category)
	}

	started := o.clock.Now()
	items, err := unwrap(input.Document)
	if err != nil {
		o.metrics.RunFinished(ctx, input.Category, observe.RunFailed)
		return nil, errors.Wrapf(err, "failed to read %s document", input.Category)
	}

	workers := input.Workers
	if workers <= 0 {
		workers = o.workers
	}

	r := &run{
		orchestrator: o,
		category:     input.Category,
		config:       cat,
		batchID:      o.idGen.Generate(),
		force:        input.Force,
	}

	slog.InfoContext(ctx, "Starting run",
		"category", r.category,
		"batch_id", r.batchID,
		"records", items.Len(),
		"workers", workers)

	results := r.execute(ctx, items, workers)
	summary := summarize(r.batchID, r.category, results)
	summary.Duration = o.clock.Now().Sub(started)

	runErr := ctx.Err()
	o.metrics.RunFinished(ctx, r.category, runStatus(summary, runErr))

	slog.InfoContext(ctx, categoryLabel(r.category)+" done",
		"batch_id", r.batchID,
		"duration_ms", summary.Duration.Milliseconds(),
		"processed", summary.Processed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"superseded", summary.Superseded,
		"canceled", summary.Canceled)

	if runErr != nil {
		return &RunOutput{Summary: summary}, errors.WrapWithCode(runErr, errors.GetCode(runErr), "run canceled")
	}
	return &RunOutput{Summary: summary}, nil
}

func summarize(batchID, category string, results []Result) *Summary {
	summary := &Summary{
		BatchID:  batchID,
		Category: category,
		Total:    len(results),
		Results:  results,
	}
	for _, res := range results {
		switch outcome(res) {
		case observe.OutcomeFailed:
			summary.Failed++
		case observe.OutcomeCanceled:
			summary.Canceled++
		case observe.OutcomeSuperseded:
			summary.Superseded++
		case observe.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Processed++
		}
	}
	return summary
}

// outcome maps a result to the single bucket it is counted in.
func outcome(res Result) string {
	switch {
	case res.Err != nil:
		return observe.OutcomeFailed
	case res.Canceled:
		return observe.OutcomeCanceled
	case res.Superseded:
		return observe.OutcomeSuperseded
	case res.Skipped:
		return observe.OutcomeSkipped
	default:
		return observe.OutcomeWritten
	}
}

func runStatus(summary *Summary, runErr error) string {
	switch {
	case runErr != nil:
		return observe.RunCanceled
	case summary.Failed > 0 && summary.Failed == summary.Total:
		return observe.RunFailed
	case summary.Failed > 0:
		return observe.RunPartial
	default:
		return observe.RunSucceeded
	}
}
