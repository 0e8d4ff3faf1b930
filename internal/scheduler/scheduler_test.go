package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secondGranularityCron() *cron.Cron {
	return cron.New(cron.WithSeconds())
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := NewService()
	require.NoError(t, s.Register("backup", "0 2 * * *", func(context.Context) error { return nil }))
	err := s.Register("backup", "0 3 * * *", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := NewService()
	err := s.Register("backup", "not a cron spec", func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestScheduledJobRuns(t *testing.T) {
	s := NewService(WithCron(secondGranularityCron()))
	var runs atomic.Int32
	done := make(chan struct{}, 1)

	require.NoError(t, s.Register("tick", "* * * * * *", func(context.Context) error {
		if runs.Add(1) == 1 {
			done <- struct{}{}
		}
		return nil
	}))

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}

func TestFailingJobKeepsSchedule(t *testing.T) {
	s := NewService(WithCron(secondGranularityCron()))
	var runs atomic.Int32
	twice := make(chan struct{}, 1)

	require.NoError(t, s.Register("flaky", "* * * * * *", func(context.Context) error {
		if runs.Add(1) == 2 {
			twice <- struct{}{}
		}
		return errors.New("boom")
	}))

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-twice:
	case <-time.After(4 * time.Second):
		t.Fatal("job did not keep running after a failure")
	}
}
