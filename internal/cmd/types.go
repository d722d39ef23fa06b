package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-normalize/internal/normalize"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "types",
		Aliases: []string{"rules"},
		Short:   "List how each property type is flattened",
		Long: `List every property type with the field its value is read from and the
value used when that field is missing. The last row applies to any type
not listed above it.`,
		Example: `  notion-normalize types -o table`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return printerForContext(ctx).PrintRecords(ctx, normalize.RuleRecords())
		},
	}
}
