package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DevRickLin/daily-digest/internal/biz/usecase"
)

func newOnceCmd() *cobra.Command {
	var (
		date        string
		dryRun      bool
		noAI        bool
		printReport bool
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run the digest once and exit",
		Long: `Scan the current civil day (or --date), build the report, save it
and deliver it to every configured target.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			res, err := a.usecases.Digest.Run(cmd.Context(), usecase.RunOptions{
				EnableAI: !noAI,
				Deliver:  !dryRun,
				Save:     true,
				Date:     date,
			})
			if err != nil {
				return err
			}

			if printReport || dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), res.Report)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "civil day to report as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build and save the report without delivering it")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "skip the AI brief")
	cmd.Flags().BoolVar(&printReport, "print", false, "print the report to stdout")

	return cmd
}
