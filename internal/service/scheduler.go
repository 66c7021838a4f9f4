package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/usecase"
)

// DigestRunner executes one pipeline run
type DigestRunner interface {
	Run(ctx context.Context, opts usecase.RunOptions) (*usecase.RunResult, error)
}

// Trigger is one recurring schedule
type Trigger struct {
	Name     string
	Spec     string // 5-field cron expression or descriptor, in the civil timezone
	EnableAI bool
}

// DigestScheduler fires digest runs on cron triggers in the civil timezone
type DigestScheduler struct {
	runner   DigestRunner
	triggers []Trigger
	offset   int
	logger   *log.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDigestScheduler creates a scheduler; triggers with an empty spec are ignored
func NewDigestScheduler(runner DigestRunner, triggers []Trigger, offsetMinutes int, logger *log.Logger) *DigestScheduler {
	active := make([]Trigger, 0, len(triggers))
	for _, t := range triggers {
		if strings.TrimSpace(t.Spec) != "" {
			active = append(active, t)
		}
	}
	return &DigestScheduler{
		runner:   runner,
		triggers: active,
		offset:   offsetMinutes,
		logger:   logger.WithPrefix("scheduler"),
	}
}

// Triggers returns the active triggers
func (s *DigestScheduler) Triggers() []Trigger {
	return s.triggers
}

// Start registers every trigger and starts the cron loop
func (s *DigestScheduler) Start(ctx context.Context) error {
	if len(s.triggers) == 0 {
		return errors.New("no schedule configured")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.cron = cron.New(
		cron.WithLocation(domain.FixedZone(s.offset)),
		cron.WithParser(cron.NewParser(
			cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	for _, t := range s.triggers {
		trigger := t
		if _, err := s.cron.AddFunc(trigger.Spec, func() { s.fire(trigger) }); err != nil {
			s.cancel()
			return errors.Wrapf(err, "schedule %s %q", trigger.Name, trigger.Spec)
		}
	}

	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("next run", "at", e.Next.Format(time.RFC3339))
	}
	s.logger.Info("scheduler started", "triggers", len(s.triggers), "zone", domain.ZoneLabel(s.offset))
	return nil
}

// Stop stops the cron loop and waits for running digests
func (s *DigestScheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Minute):
			s.logger.Warn("scheduler stop timed out")
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *DigestScheduler) fire(t Trigger) {
	s.wg.Add(1)
	defer s.wg.Done()

	s.logger.Info("trigger fired", "trigger", t.Name, "ai", t.EnableAI)
	res, err := s.runner.Run(s.ctx, usecase.RunOptions{
		EnableAI: t.EnableAI,
		Deliver:  true,
		Save:     true,
	})
	if err != nil {
		s.logger.Error("digest run failed", "trigger", t.Name, "err", err)
		return
	}
	s.logger.Info("digest run done", "trigger", t.Name, "date", res.Window.Label,
		"messages", len(res.Accepted), "delivered", res.Delivered())
}
