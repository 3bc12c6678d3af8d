package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ceremony/internal/domain"
	"ceremony/internal/validation"
)

func TestDefaultScheduleTargets(t *testing.T) {
	start := time.Date(2026, 3, 1, 13, 30, 0, 0, time.UTC)
	timing := domain.Timing{ValidationStart: start, ShortSession: 2 * time.Minute, LongSession: 30 * time.Minute}
	s := validation.DefaultSchedule()

	cases := []struct {
		transition validation.Transition
		at         time.Duration
		floor      time.Duration
	}{
		{validation.ExtraBump, 35 * time.Second, 5 * time.Second},
		{validation.FinalizeShort, 90 * time.Second, 0},
		{validation.ShortDeadline, 110 * time.Second, 5 * time.Second},
		{validation.Reveal, 120 * time.Second, 0},
		{validation.LongDeadline, 110*time.Second + 30*time.Minute, 5 * time.Second},
		{validation.FinalizeLong, 240 * time.Second, 0},
	}
	for _, tc := range cases {
		t.Run(tc.transition.String(), func(t *testing.T) {
			target, floor := s.Target(tc.transition, timing)
			require.Equal(t, start.Add(tc.at), target)
			require.Equal(t, tc.floor, floor)
		})
	}
}

func TestDelayIsRelativeToValidationStart(t *testing.T) {
	start := time.Now()
	timing := domain.Timing{ValidationStart: start, ShortSession: time.Minute, LongSession: 10 * time.Minute}
	s := validation.DefaultSchedule()

	require.Equal(t, 50*time.Second, s.Delay(validation.ShortDeadline, timing, start))
	require.Equal(t, 20*time.Second, s.Delay(validation.ShortDeadline, timing, start.Add(30*time.Second)))

	// Late starts are clamped to the floor, or fire at once without one.
	late := start.Add(5 * time.Minute)
	require.Equal(t, 5*time.Second, s.Delay(validation.ShortDeadline, timing, late))
	require.Equal(t, 5*time.Second, s.Delay(validation.ExtraBump, timing, late))
	require.Equal(t, time.Duration(0), s.Delay(validation.FinalizeShort, timing, late))
	require.Equal(t, time.Duration(0), s.Delay(validation.Reveal, timing, late))
}
