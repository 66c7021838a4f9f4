package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DevRickLin/daily-digest/internal/service"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the digest on its recurring triggers until interrupted",
		Long: `Fire the digest on SCHEDULE_PRIMARY and, when set, SCHEDULE_SECONDARY.
Both are cron expressions evaluated in the configured civil timezone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := service.NewDigestScheduler(a.usecases.Digest, []service.Trigger{
				{Name: "primary", Spec: a.cfg.Schedule.Primary, EnableAI: a.cfg.Schedule.PrimaryAI},
				{Name: "secondary", Spec: a.cfg.Schedule.Secondary, EnableAI: a.cfg.Schedule.SecondaryAI},
			}, a.cfg.Report.TimezoneOffset, a.logger)

			if err := sched.Start(context.WithoutCancel(ctx)); err != nil {
				return err
			}

			<-ctx.Done()
			a.logger.Info("shutting down")
			sched.Stop()
			return nil
		},
	}
}
