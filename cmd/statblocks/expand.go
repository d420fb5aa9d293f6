package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExpandCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <category> <text>",
		Short: "Expand directives and keyword links in text",
		Long: `Expand runs only the text replacement of a category on the given text
and prints the result. Use it to check how a directive renders.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := root.load(cmd, nil); err != nil {
				return err
			}

			strategy, err := newStrategy(args[0])
			if err != nil {
				return err
			}

			expanded, err := strategy.TextReplace(args[1], "expand")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), expanded)
			return err
		},
	}
}
