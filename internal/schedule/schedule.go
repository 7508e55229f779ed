// Package schedule owns the wall-clock windows that trigger auto-transfer
// runs. The engine itself is time-agnostic; this package is the only place
// that knows when to call it.
package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultTimezone is the business timezone for all default windows.
const DefaultTimezone = "America/Mexico_City"

// Window is one named trigger: a standard cron spec plus an optional guard
// that can veto a firing.
type Window struct {
	Name  string
	Spec  string
	Guard func(now time.Time) bool
}

// DefaultWindows reproduces the production schedule: weekday evenings every
// ten minutes from 18:40 to 23:30, Saturday 12:00 to 13:00, a 72-hour cadence
// for the public-general sweep, and month-end evenings on the last two days.
func DefaultWindows() []Window {
	return []Window{
		{Name: "weekday-evening-start", Spec: "40,50 18 * * 1-5"},
		{Name: "weekday-evening", Spec: "0,10,20,30,40,50 19-22 * * 1-5"},
		{Name: "weekday-evening-end", Spec: "0,10,20,30 23 * * 1-5"},
		{Name: "saturday-noon", Spec: "0,10,20,30,40,50 12 * * 6"},
		{Name: "saturday-noon-end", Spec: "0 13 * * 6"},
		{Name: "public-general-sweep", Spec: "@every 72h"},
		{Name: "month-end-evening", Spec: "0,10,20,30,40,50 18-22 28-31 * *", Guard: LastTwoDaysOfMonth},
		{Name: "month-end-evening-end", Spec: "0,10,20,30 23 28-31 * *", Guard: LastTwoDaysOfMonth},
	}
}

// LastTwoDaysOfMonth reports whether t falls on the last or second-to-last
// day of its month.
func LastTwoDaysOfMonth(t time.Time) bool {
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	return t.Day() == lastDay || t.Day() == lastDay-1
}

// Scheduler fires the run function on every window hit. Overlapping windows
// are deliberate; the run function is invoked at most once per minute because
// cron resolution is one minute.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// NewScheduler builds a scheduler in the given location. run receives a
// background context; cancellation of in-flight runs is the caller's concern.
func NewScheduler(loc *time.Location, windows []Window, log *logrus.Logger, run func(ctx context.Context)) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(loc))
	for _, w := range windows {
		w := w
		_, err := c.AddFunc(w.Spec, func() {
			now := time.Now().In(loc)
			if w.Guard != nil && !w.Guard(now) {
				return
			}
			log.WithField("window", w.Name).Info("schedule window fired")
			run(context.Background())
		})
		if err != nil {
			return nil, err
		}
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start begins firing windows in a background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any
// in-flight firing has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
