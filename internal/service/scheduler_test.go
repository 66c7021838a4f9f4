package service

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/usecase"
)

type recordingRunner struct {
	mu   sync.Mutex
	opts []usecase.RunOptions
	err  error
}

func (r *recordingRunner) Run(ctx context.Context, opts usecase.RunOptions) (*usecase.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = append(r.opts, opts)
	if r.err != nil {
		return nil, r.err
	}
	return &usecase.RunResult{Window: domain.TimeWindow{Label: "2024-03-10"}}, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestNewDigestScheduler_DropsEmptySpecs(t *testing.T) {
	s := NewDigestScheduler(&recordingRunner{}, []Trigger{
		{Name: "primary", Spec: "0 21 * * *", EnableAI: true},
		{Name: "secondary", Spec: "  "},
	}, 330, discardLogger())

	require.Len(t, s.Triggers(), 1)
	assert.Equal(t, "primary", s.Triggers()[0].Name)
}

func TestStart_NoTriggers(t *testing.T) {
	s := NewDigestScheduler(&recordingRunner{}, nil, 330, discardLogger())
	assert.Error(t, s.Start(context.Background()))
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewDigestScheduler(&recordingRunner{}, []Trigger{{Name: "bad", Spec: "every evening"}}, 330, discardLogger())
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestStart_RegistersEntriesInCivilZone(t *testing.T) {
	s := NewDigestScheduler(&recordingRunner{}, []Trigger{
		{Name: "primary", Spec: "0 21 * * *"},
		{Name: "secondary", Spec: "@daily"},
	}, 330, discardLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		_, offset := e.Next.Zone()
		assert.Equal(t, 330*60, offset)
	}
}

func TestFire_RunsWithDeliveryAndSave(t *testing.T) {
	runner := &recordingRunner{}
	s := NewDigestScheduler(runner, []Trigger{{Name: "primary", Spec: "@daily", EnableAI: true}}, 330, discardLogger())
	require.NoError(t, s.Start(context.Background()))

	s.fire(Trigger{Name: "primary", EnableAI: true})
	s.fire(Trigger{Name: "secondary", EnableAI: false})
	s.Stop()

	require.Len(t, runner.opts, 2)
	assert.Equal(t, usecase.RunOptions{EnableAI: true, Deliver: true, Save: true}, runner.opts[0])
	assert.Equal(t, usecase.RunOptions{EnableAI: false, Deliver: true, Save: true}, runner.opts[1])
}

func TestFire_RunnerErrorIsLogged(t *testing.T) {
	runner := &recordingRunner{err: errors.New("boom")}
	s := NewDigestScheduler(runner, []Trigger{{Name: "primary", Spec: "@daily"}}, 330, discardLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.NotPanics(t, func() { s.fire(Trigger{Name: "primary"}) })
}
