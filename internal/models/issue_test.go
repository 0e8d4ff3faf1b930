package models

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleDowntime(t *testing.T) {
	t.Run("full toggle sequence", func(t *testing.T) {
		issue := &Issue{}
		require.Equal(t, DowntimeNotStarted, issue.DowntimePhase())

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		msg, err := issue.ToggleDowntime(start)
		require.NoError(t, err)
		assert.Equal(t, "Downtime started.", msg)
		assert.Equal(t, DowntimeRunning, issue.DowntimePhase())
		require.NotNil(t, issue.DowntimeStartTime)
		assert.Equal(t, start, *issue.DowntimeStartTime)
		assert.Nil(t, issue.DowntimeEndTime)

		end := start.Add(90 * time.Minute)
		msg, err = issue.ToggleDowntime(end)
		require.NoError(t, err)
		assert.Equal(t, "Downtime stopped.", msg)
		assert.Equal(t, DowntimeEnded, issue.DowntimePhase())
		require.NotNil(t, issue.DowntimeEndTime)
		assert.Equal(t, end, *issue.DowntimeEndTime)
	})

	t.Run("closed interval is immutable", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
		end := start.Add(time.Hour)
		issue := &Issue{DowntimeStartTime: &start, DowntimeEndTime: &end}

		msg, err := issue.ToggleDowntime(end.Add(time.Hour))
		require.ErrorIs(t, err, ErrDowntimeEnded)
		assert.Empty(t, msg)
		assert.Equal(t, start, *issue.DowntimeStartTime)
		assert.Equal(t, end, *issue.DowntimeEndTime)
	})

	t.Run("end is never set without start", func(t *testing.T) {
		// Random toggle sequences must never produce an end time while the
		// start time is still unset.
		rng := rand.New(rand.NewSource(1))
		for seq := 0; seq < 100; seq++ {
			issue := &Issue{}
			now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
			calls := 1 + rng.Intn(5)
			for c := 0; c < calls; c++ {
				now = now.Add(time.Duration(rng.Intn(3600)) * time.Second)
				_, _ = issue.ToggleDowntime(now)
				if issue.DowntimeEndTime != nil {
					require.NotNil(t, issue.DowntimeStartTime)
					require.False(t, issue.DowntimeEndTime.Before(*issue.DowntimeStartTime))
				}
			}
		}
	})
}

func TestFormatDowntime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		end  time.Time
		want string
	}{
		{"one hour two minutes three seconds", start.Add(time.Hour + 2*time.Minute + 3*time.Second), "01:02:03"},
		{"zero interval", start, "00:00:00"},
		{"hours exceed a day", start.Add(26*time.Hour + 5*time.Second), "26:00:05"},
		{"negative clamps to zero", start.Add(-time.Minute), "00:00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDowntime(start, tc.end))
		})
	}
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusResolved.Valid())
	assert.False(t, IssueStatus("closed").Valid())

	assert.True(t, PriorityCritical.Valid())
	assert.True(t, PriorityNormal.Valid())
	assert.False(t, IssuePriority("urgent").Valid())
}

func TestParseDueDate(t *testing.T) {
	d, err := ParseDueDate("2024-06-30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDueDate("2024-06-30T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, 15, d.Hour())

	_, err = ParseDueDate("next tuesday")
	require.Error(t, err)
}
