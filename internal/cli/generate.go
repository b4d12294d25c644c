package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGenerateCmd(factory serviceFactory, opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a SQL query answering the question",
		Long: `The generate command builds a SQL query for --question against the schema in --schema-file.
With --examples-file the fast model is used and the examples are shown to it; without it the fine model is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.load()
			if err != nil {
				return err
			}

			svc, release, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			result, err := svc.GenerateSQL(cmd.Context(), req.question, req.tableSchema, req.similar)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.SQL)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result with the selected model as JSON")
	return cmd
}
