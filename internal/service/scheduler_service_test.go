package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	hour, minute, err := parseClock("02:30")
	require.NoError(t, err)
	assert.Equal(t, 2, hour)
	assert.Equal(t, 30, minute)

	for _, bad := range []string{"", "02", "02:60", "24:00", "2:3:4", "aa:bb"} {
		_, _, err := parseClock(bad)
		assert.Error(t, err, "parseClock(%q)", bad)
	}
}

func TestScheduleValidation(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	_, err := s.ScheduleDaily("25:00", func() {})
	assert.Error(t, err)

	_, err = s.ScheduleMonthly(31, "08:00", func() {})
	assert.Error(t, err)

	_, err = s.ScheduleInterval(0, func() {})
	assert.Error(t, err)

	_, err = s.ScheduleDaily("02:00", func() {})
	assert.NoError(t, err)
	_, err = s.ScheduleWeekly(time.Monday, "08:05", func() {})
	assert.NoError(t, err)
	_, err = s.ScheduleMonthly(1, "08:10", func() {})
	assert.NoError(t, err)
}

func TestScheduleIntervalRuns(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	done := make(chan struct{})
	var once bool
	_, err := s.ScheduleInterval(time.Second, func() {
		if !once {
			once = true
			close(done)
		}
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}
