package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-statblocks/internal/document"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/observe"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/ledger"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/output"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

// run holds the state shared by the workers of one Run call. Workers only
// write their own slot of the results slice.
type run struct {
	*orchestrator
	category string
	config   *CategoryConfig
	batchID  string
	force    bool
}

func (r *run) execute(ctx context.Context, items *tree.Array, workers int) []Result {
	records, failed := loadRecords(r.category, items)
	superseded := supersededIndexes(records)

	results := make([]Result, items.Len())
	for i, res := range failed {
		r.fail(ctx, &res, res.Err)
		r.metrics.RecordFinished(ctx, r.category, observe.OutcomeFailed, 0)
		results[i] = res
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for n, rec := range records {
		if ctx.Err() != nil {
			for _, rest := range records[n:] {
				results[rest.Index] = r.cancel(ctx, rest)
			}
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				results[rec.Index] = r.cancel(ctx, rec)
				return nil
			}
			results[rec.Index] = r.process(ctx, rec, superseded[rec.Index])
			return nil
		})
	}

	// Workers never return errors; failures are carried in results.
	_ = g.Wait()
	return results
}

func (r *run) cancel(ctx context.Context, rec *Record) Result {
	r.metrics.RecordFinished(ctx, r.category, observe.OutcomeCanceled, 0)
	return Result{
		Index:    rec.Index,
		Name:     rec.Name,
		Stage:    StageLoaded,
		Canceled: true,
	}
}

func (r *run) process(ctx context.Context, rec *Record, superseded bool) (res Result) {
	started := r.clock.Now()
	res = Result{
		Index:      rec.Index,
		Name:       rec.Name,
		Stage:      StageLoaded,
		Superseded: superseded,
	}

	defer func() {
		if p := recover(); p != nil {
			err := errors.Internalf("panic while processing record: %v", p).
				WithMeta("stage", string(res.Stage))
			r.fail(ctx, &res, err)
		}
		r.metrics.RecordFinished(ctx, r.category, outcome(res), r.clock.Now().Sub(started))
	}()

	if err := r.convert(ctx, rec, &res); err != nil {
		r.fail(ctx, &res, err)
		return res
	}

	switch {
	case res.Superseded:
		slog.WarnContext(ctx, fmt.Sprintf("Record is superseded by a later record with the same name. | %s", rec.Name),
			"record", rec.Name,
			"category", r.category,
			"index", rec.Index)
	default:
		slog.DebugContext(ctx, rec.Name+" done.",
			"category", r.category,
			"skipped", res.Skipped,
			"path", res.OutputPath)
	}
	return res
}

// convert advances rec through the stages, recording progress in res.
func (r *run) convert(ctx context.Context, rec *Record, res *Result) error {
	strategy := r.config.Strategy

	// An issued record finishes even if the run is canceled meanwhile.
	ctx = context.WithoutCancel(ctx)

	hash, err := hashRecord(rec.Tree)
	if err != nil {
		return stageErr(err, StageLoaded, "failed to hash record")
	}
	if !res.Superseded && r.unchanged(ctx, rec, hash, res) {
		return nil
	}

	if err := strategy.PreShape(rec.Tree, rec.Name); err != nil {
		return stageErr(err, StagePreShaped, "pre-shape failed")
	}
	res.Stage = StagePreShaped

	frontMatter, err := document.Serialize(rec.Tree)
	if err != nil {
		return stageErr(err, StageFrontMatterSerialized, "failed to serialize front matter")
	}
	res.Stage = StageFrontMatterSerialized

	if err := strategy.FlattenForDisplay(rec.Tree, rec.Name); err != nil {
		return stageErr(err, StageFlattened, "flatten for display failed")
	}
	res.Stage = StageFlattened

	if r.config.Assets != nil && !r.config.Assets.Attach(rec.Tree, rec.Name) {
		res.AssetMissing = true
		slog.DebugContext(ctx, "No image found",
			"record", rec.Name,
			"category", r.category)
	}

	statblock, err := document.Serialize(rec.Tree)
	if err != nil {
		return stageErr(err, StageStatblockSerialized, "failed to serialize statblock")
	}
	res.Stage = StageStatblockSerialized

	if frontMatter, err = strategy.TextReplace(frontMatter, rec.Name); err != nil {
		return stageErr(err, StageTextReplaced, "text replace failed on front matter")
	}
	if statblock, err = strategy.TextReplace(statblock, rec.Name); err != nil {
		return stageErr(err, StageTextReplaced, "text replace failed on statblock")
	}
	res.Stage = StageTextReplaced

	if res.Superseded {
		return nil
	}

	written, err := r.config.Writer.Write(ctx, &output.WriteInput{
		Name:    rec.Name,
		Content: r.config.Template.Render(frontMatter, statblock),
	})
	if err != nil {
		return stageErr(err, StageHandedOff, "failed to write document")
	}
	res.Stage = StageHandedOff
	res.OutputPath = written.Path
	res.Skipped = written.Unchanged

	if !written.DryRun {
		r.record(ctx, rec, hash, written.Path)
	}
	return nil
}

// unchanged reports whether the ledger already holds this exact record.
// Ledger failures are logged and treated as a miss.
func (r *run) unchanged(ctx context.Context, rec *Record, hash string, res *Result) bool {
	if r.ledger == nil || r.force {
		return false
	}

	got, err := r.ledger.Get(ctx, &ledger.GetInput{Category: r.category, Name: rec.Name})
	if err != nil {
		if !errors.IsNotFound(err) {
			slog.WarnContext(ctx, "Ledger lookup failed",
				"record", rec.Name,
				"category", r.category,
				"error", err)
		}
		return false
	}
	if got.Entry.Hash != hash {
		return false
	}

	res.Skipped = true
	res.OutputPath = got.Entry.OutputPath
	return true
}

func (r *run) record(ctx context.Context, rec *Record, hash, path string) {
	if r.ledger == nil {
		return
	}

	_, err := r.ledger.Put(ctx, &ledger.PutInput{Entry: &ledger.Entry{
		Category:   r.category,
		Name:       rec.Name,
		Hash:       hash,
		OutputPath: path,
		BatchID:    r.batchID,
		UpdatedAt:  r.clock.Now(),
	}})
	if err != nil {
		slog.WarnContext(ctx, "Ledger update failed",
			"record", rec.Name,
			"category", r.category,
			"error", err)
	}
}

// fail logs err as "<message>. | <name>" and marks the result failed. The
// logged stage is the one the record was entering.
func (r *run) fail(ctx context.Context, res *Result, err error) {
	stage := res.Stage
	if s, ok := errors.GetMeta(err)["stage"].(string); ok {
		stage = Stage(s)
	}

	res.Err = err
	res.Stage = StageFailed

	slog.ErrorContext(ctx, fmt.Sprintf("%s. | %s", errors.GetMessage(err), res.Name),
		"record", res.Name,
		"category", r.category,
		"index", res.Index,
		"stage", string(stage),
		"code", errors.GetCode(err).String(),
		"error", err)
}

func stageErr(err error, stage Stage, message string) error {
	return errors.Wrap(err, message).WithMeta("stage", string(stage))
}
