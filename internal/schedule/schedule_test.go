package schedule_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-autotransfer/internal/schedule"
)

func TestDefaultWindows_SpecsParse(t *testing.T) {
	for _, w := range schedule.DefaultWindows() {
		t.Run(w.Name, func(t *testing.T) {
			_, err := cron.ParseStandard(w.Spec)
			assert.NoError(t, err)
		})
	}
}

func TestWeekdayEveningWindow_NextFirings(t *testing.T) {
	spec, err := cron.ParseStandard("40,50 18 * * 1-5")
	require.NoError(t, err)

	// Tuesday 18:35 fires at 18:40.
	from := time.Date(2026, 8, 25, 18, 35, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 25, 18, 40, 0, 0, time.UTC), spec.Next(from))

	// Friday 18:55 skips the weekend start hour to Monday.
	from = time.Date(2026, 8, 28, 18, 55, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 18, 40, 0, 0, time.UTC), spec.Next(from))
}

func TestWeekdayEveningEnd_StopsAt2330(t *testing.T) {
	spec, err := cron.ParseStandard("0,10,20,30 23 * * 1-5")
	require.NoError(t, err)

	from := time.Date(2026, 8, 25, 23, 25, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 25, 23, 30, 0, 0, time.UTC), spec.Next(from))

	// After 23:30 nothing fires until the next weekday's 23:00 hour.
	from = time.Date(2026, 8, 25, 23, 31, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 26, 23, 0, 0, 0, time.UTC), spec.Next(from))
}

func TestSaturdayWindow(t *testing.T) {
	spec, err := cron.ParseStandard("0,10,20,30,40,50 12 * * 6")
	require.NoError(t, err)

	// 2026-08-29 is a Saturday.
	from := time.Date(2026, 8, 29, 11, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), spec.Next(from))
}

func TestLastTwoDaysOfMonth(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{"august 30th", time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC), true},
		{"august 31st", time.Date(2026, 8, 31, 19, 0, 0, 0, time.UTC), true},
		{"august 29th", time.Date(2026, 8, 29, 19, 0, 0, 0, time.UTC), false},
		{"february 28th non-leap", time.Date(2026, 2, 28, 19, 0, 0, 0, time.UTC), true},
		{"february 27th non-leap", time.Date(2026, 2, 27, 19, 0, 0, 0, time.UTC), true},
		{"february 26th non-leap", time.Date(2026, 2, 26, 19, 0, 0, 0, time.UTC), false},
		{"leap february 29th", time.Date(2028, 2, 29, 19, 0, 0, 0, time.UTC), true},
		{"leap february 28th", time.Date(2028, 2, 28, 19, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schedule.LastTwoDaysOfMonth(tt.date))
		})
	}
}

func TestNewScheduler(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := schedule.NewScheduler(time.UTC, schedule.DefaultWindows(), log, func(context.Context) {})
	require.NoError(t, err)

	s.Start()
	<-s.Stop().Done()
}

func TestNewScheduler_BadSpec(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	windows := []schedule.Window{{Name: "broken", Spec: "not a cron spec"}}
	_, err := schedule.NewScheduler(time.UTC, windows, log, func(context.Context) {})
	assert.Error(t, err)
}
