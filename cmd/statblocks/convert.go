package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-statblocks/internal/assets"
	"github.com/KirkDiggler/rpg-statblocks/internal/config"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/orchestrators/pipeline"
	"github.com/KirkDiggler/rpg-statblocks/internal/redis"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/ledger"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/output"
)

type convertOptions struct {
	*rootOptions
	inputDir  string
	outputDir string
	workers   int
	dryRun    bool
	force     bool
	redisAddr string
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	opts := &convertOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "convert [category...]",
		Short: "Convert category exports into markdown notes",
		Long: `Convert runs the pipeline for the named categories, or for every
configured category when none is given. Records that did not change since
the last run are skipped unless --force is set.`,
		RunE: opts.run,
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.inputDir, "input-dir", "", "Directory holding the input files")
	flags.StringVar(&opts.outputDir, "output-dir", "", "Directory the notes are written under")
	flags.IntVar(&opts.workers, "workers", 0, "Records converted concurrently")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Convert without writing files")
	flags.BoolVar(&opts.force, "force", false, "Ignore the ledger and reconvert every record")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address for the ledger (default: in memory)")

	return cmd
}

func (o *convertOptions) run(cmd *cobra.Command, args []string) error {
	cfg, err := o.load(cmd, func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("input-dir") {
			cfg.InputDir = o.inputDir
		}
		if flags.Changed("output-dir") {
			cfg.OutputDir = o.outputDir
		}
		if flags.Changed("workers") {
			cfg.Workers = o.workers
		}
		if flags.Changed("dry-run") {
			cfg.DryRun = o.dryRun
		}
		if flags.Changed("redis-addr") {
			cfg.RedisAddr = o.redisAddr
		}
	})
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = cfg.Names()
	}
	for _, name := range names {
		if _, err := cfg.Category(name); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeLedger, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	categories := make(map[string]*pipeline.CategoryConfig, len(names))
	for _, name := range names {
		catCfg, closeAssets, err := buildCategory(cfg, name)
		if err != nil {
			return err
		}
		defer closeAssets()
		categories[name] = catCfg
	}

	svc, err := pipeline.NewOrchestrator(&pipeline.Config{
		Categories: categories,
		Ledger:     repo,
		Workers:    cfg.Workers,
	})
	if err != nil {
		return err
	}

	inputs := make([]categoryInput, 0, len(names))
	for _, name := range names {
		path, err := cfg.InputPath(name)
		if err != nil {
			return err
		}
		inputs = append(inputs, categoryInput{Category: name, Path: path})
	}

	return convertAll(ctx, svc, cmd.OutOrStdout(), inputs, o.force)
}

func openLedger(ctx context.Context, cfg *config.Config) (ledger.Repository, func(), error) {
	if cfg.RedisAddr == "" {
		return ledger.NewInMemory(), func() {}, nil
	}

	client, err := redis.Connect(ctx, cfg.RedisAddr, nil)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}

	repo, err := ledger.NewRedis(&ledger.RedisConfig{Client: client})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return repo, closeFn, nil
}

func buildCategory(cfg *config.Config, name string) (*pipeline.CategoryConfig, func(), error) {
	cat, err := cfg.Category(name)
	if err != nil {
		return nil, nil, err
	}

	strategy, err := newStrategy(name)
	if err != nil {
		return nil, nil, err
	}
	tmpl, err := templateFor(name, cat)
	if err != nil {
		return nil, nil, err
	}

	outDir, err := cfg.OutputPath(name)
	if err != nil {
		return nil, nil, err
	}
	writer, err := output.NewFile(&output.FileConfig{Dir: outDir, DryRun: cfg.DryRun})
	if err != nil {
		return nil, nil, err
	}

	catCfg := &pipeline.CategoryConfig{
		Strategy: strategy,
		Template: tmpl,
		Writer:   writer,
	}
	closeFn := func() {}

	imageDir, err := cfg.ImagePath(name)
	if err != nil {
		return nil, nil, err
	}
	if imageDir != "" {
		index, err := assets.Open(imageDir)
		switch {
		case errors.IsNotFound(err):
			slog.Warn("Image directory not found, images will not be attached",
				"category", name,
				"dir", imageDir)
		case err != nil:
			return nil, nil, err
		default:
			catCfg.Assets = index
			closeFn = func() { _ = index.Close() }
		}
	}

	return catCfg, closeFn, nil
}

// categoryInput names the input file of one category.
type categoryInput struct {
	Category string
	Path     string
}

// convertAll runs the categories in order and prints one summary line per
// category. It stops at the first run error; record failures are reported
// after every category ran.
func convertAll(ctx context.Context, svc pipeline.Service, out io.Writer, inputs []categoryInput, force bool) error {
	failed := 0
	for _, in := range inputs {
		doc, err := os.ReadFile(in.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.NotFoundf("input file %s does not exist", in.Path).
					WithMeta("category", in.Category)
			}
			return errors.Wrapf(err, "failed to read %s", in.Path)
		}

		result, err := svc.Run(ctx, &pipeline.RunInput{
			Category: in.Category,
			Document: doc,
			Force:    force,
		})
		if result != nil && result.Summary != nil {
			printSummary(out, result.Summary)
			failed += result.Summary.Failed
		}
		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return errors.Internalf("%d records failed", failed)
	}
	return nil
}

func printSummary(w io.Writer, s *pipeline.Summary) {
	_, _ = fmt.Fprintf(w, "%s: %d processed, %d failed, %d skipped, %d superseded, %d canceled (%d total) in %dms\n",
		s.Category, s.Processed, s.Failed, s.Skipped, s.Superseded, s.Canceled, s.Total, s.Duration.Milliseconds())
}
