package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newExplainCmd(factory serviceFactory, opts *options) *cobra.Command {
	var sql string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Check whether a SQL query answers the question",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sql == "" {
				return errors.New("--sql is required")
			}
			req, err := opts.load()
			if err != nil {
				return err
			}

			svc, release, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			explanation, err := svc.ExplainSQL(cmd.Context(), req.question, sql, req.tableSchema, req.similar)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), explanation)
		},
	}

	cmd.Flags().StringVar(&sql, "sql", "", "SQL query to explain (required)")
	return cmd
}
