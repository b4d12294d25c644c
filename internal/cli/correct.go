package cli

import (
	"errors"
	"fmt"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/spf13/cobra"
)

func newCorrectCmd(factory serviceFactory, opts *options) *cobra.Command {
	var (
		attempt      domain.CorrectionAttemptRequest
		attemptsFile string
		maxAttempts  int
	)

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Ask the correction model to fix failing SQL",
		Long: `The correct command opens a correction session and submits failed queries in order.
Pass one query with --sql and its errors, or several with --attempts-file holding
[{"sql": ..., "bigquery_error": ..., "validation_error": ...}]. Each candidate is printed on its own line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts := []domain.CorrectionAttemptRequest{attempt}
			if attemptsFile != "" {
				var err error
				if attempts, err = readAttempts(attemptsFile); err != nil {
					return err
				}
			} else if attempt.SQL == "" {
				return errors.New("--sql or --attempts-file is required")
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

			session := svc.NewCorrectionSession(req.tableSchema, req.question, req.similar, service.WithMaxAttempts(maxAttempts))
			for _, a := range attempts {
				candidate, err := session.GetCorrectedSQL(cmd.Context(), a.SQL, a.BigQueryError, a.ValidationError)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), candidate); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&attempt.SQL, "sql", "", "failed SQL query")
	cmd.Flags().StringVar(&attempt.BigQueryError, "bigquery-error", "", "error returned by BigQuery")
	cmd.Flags().StringVar(&attempt.ValidationError, "validation-error", "", "error returned by the SQL validator")
	cmd.Flags().StringVar(&attemptsFile, "attempts-file", "", "JSON file with several failed attempts")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "stop after this many attempts (0 for no limit)")
	return cmd
}
