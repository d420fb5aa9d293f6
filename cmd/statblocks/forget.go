package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-statblocks/internal/config"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/ledger"
)

type forgetOptions struct {
	*rootOptions
	redisAddr string
}

func newForgetCmd(root *rootOptions) *cobra.Command {
	opts := &forgetOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "forget <category> <name>...",
		Short: "Remove records from the ledger",
		Long: `Forget deletes the ledger entries of the named records so the next
convert rewrites them even when their input did not change.`,
		Args: cobra.MinimumNArgs(2),
		RunE: opts.run,
	}

	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Redis address of the ledger")

	return cmd
}

func (o *forgetOptions) run(cmd *cobra.Command, args []string) error {
	cfg, err := o.load(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("redis-addr") {
			cfg.RedisAddr = o.redisAddr
		}
	})
	if err != nil {
		return err
	}

	category := args[0]
	if _, err := cfg.Category(category); err != nil {
		return err
	}
	if cfg.RedisAddr == "" {
		return errors.InvalidArgument("forget needs a persistent ledger, set --redis-addr")
	}

	repo, closeLedger, err := openLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	out := cmd.OutOrStdout()
	for _, name := range args[1:] {
		_, err := repo.Delete(cmd.Context(), &ledger.DeleteInput{Category: category, Name: name})
		switch {
		case errors.IsNotFound(err):
			_, _ = fmt.Fprintf(out, "%s: not recorded\n", name)
		case err != nil:
			return err
		default:
			_, _ = fmt.Fprintf(out, "%s: forgotten\n", name)
		}
	}
	return nil
}
