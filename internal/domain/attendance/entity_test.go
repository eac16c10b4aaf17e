package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, ist)
}

func intPtr(i int) *int { return &i }

func TestComputeWorkHours(t *testing.T) {
	tests := []struct {
		name         string
		login        time.Time
		logout       time.Time
		breakMinutes int
		wantWork     float64
		wantOvertime float64
	}{
		{name: "ten hours with an hour of breaks", login: at(9, 0), logout: at(19, 0), breakMinutes: 60, wantWork: 9.0, wantOvertime: 1.0},
		{name: "short day", login: at(9, 0), logout: at(13, 30), breakMinutes: 0, wantWork: 4.5, wantOvertime: 0},
		{name: "rounds to two decimals", login: at(9, 0), logout: at(17, 20), breakMinutes: 0, wantWork: 8.33, wantOvertime: 0.33},
		{name: "breaks longer than the session clamp to zero", login: at(9, 0), logout: at(9, 30), breakMinutes: 45, wantWork: 0, wantOvertime: 0},
		{name: "clock skew clamps to zero", login: at(10, 0), logout: at(9, 0), breakMinutes: 0, wantWork: 0, wantOvertime: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work, overtime := ComputeWorkHours(tt.login, tt.logout, tt.breakMinutes, 8)
			assert.Equal(t, tt.wantWork, work)
			assert.Equal(t, tt.wantOvertime, overtime)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("emp-1", at(9, 0))
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, "2024-03-04", s.Date)

	_, err := s.EndBreak(at(9, 30))
	assert.ErrorIs(t, err, ErrNoActiveBreak)

	onBreak, err := s.StartBreak("b1", BreakLunch, nil, at(12, 0))
	require.NoError(t, err)
	assert.Equal(t, StatusOnBreak, onBreak.Status)
	require.NotNil(t, onBreak.CurrentBreakID)
	assert.Equal(t, "b1", *onBreak.CurrentBreakID)
	assert.Empty(t, s.Breaks, "transitions must not mutate the receiver")

	_, err = onBreak.StartBreak("b2", BreakShort, nil, at(12, 5))
	assert.ErrorIs(t, err, ErrNoActiveSession)

	back, err := onBreak.EndBreak(at(12, 59).Add(59 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, StatusActive, back.Status)
	assert.Nil(t, back.CurrentBreakID)
	assert.Equal(t, 59, back.Breaks[0].DurationMinutes, "duration rounds down to whole minutes")

	done, err := back.ClockOut(at(18, 0), 8)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 59, done.TotalBreakMinutes)
	assert.Equal(t, 8.02, done.TotalWorkHours)
	assert.Equal(t, 0.02, done.OvertimeHours)

	_, err = done.ClockOut(at(18, 5), 8)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestClockOutEndsOpenBreak(t *testing.T) {
	s := NewSession("emp-1", at(9, 0))
	s, err := s.StartBreak("b1", BreakTea, nil, at(17, 0))
	require.NoError(t, err)

	done, err := s.ClockOut(at(17, 30), 8)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.Breaks[0].EndTime)
	assert.Equal(t, 30, done.Breaks[0].DurationMinutes)
	assert.Equal(t, 30, done.TotalBreakMinutes)
	assert.Nil(t, done.CurrentBreakID)
}

func TestMarkIncomplete(t *testing.T) {
	nextDay := func(hour, minute int) time.Time { return at(hour, minute).AddDate(0, 0, 1) }

	t.Run("capped at end of day with no hours credited", func(t *testing.T) {
		s := NewSession("emp-1", at(9, 0))
		out, err := s.MarkIncomplete(nextDay(0, 5))
		require.NoError(t, err)

		assert.Equal(t, StatusIncomplete, out.Status)
		require.NotNil(t, out.LogoutTime)
		assert.True(t, out.LogoutTime.Equal(time.Date(2024, 3, 4, 23, 59, 59, 0, ist)))
		assert.Zero(t, out.TotalWorkHours)
		assert.Zero(t, out.OvertimeHours)

		_, err = out.MarkIncomplete(nextDay(0, 10))
		assert.ErrorIs(t, err, ErrNoActiveSession)
	})

	t.Run("open break closed at the cap", func(t *testing.T) {
		s := NewSession("emp-1", at(9, 0))
		s, err := s.StartBreak("b1", BreakLunch, nil, at(23, 0))
		require.NoError(t, err)

		out, err := s.MarkIncomplete(nextDay(0, 5))
		require.NoError(t, err)
		require.NotNil(t, out.Breaks[0].EndTime)
		assert.Equal(t, 59, out.Breaks[0].DurationMinutes)
		assert.Equal(t, 59, out.TotalBreakMinutes)
		assert.Nil(t, out.CurrentBreakID)
		assert.Zero(t, out.OvertimeHours)
	})

	t.Run("same-day close keeps now", func(t *testing.T) {
		out, err := NewSession("emp-1", at(9, 0)).MarkIncomplete(at(20, 0))
		require.NoError(t, err)
		assert.True(t, out.LogoutTime.Equal(at(20, 0)))
	})
}

func TestBreakSettingsEvaluate(t *testing.T) {
	breaks := []Break{{DurationMinutes: 20}, {DurationMinutes: 25}}

	t.Run("not enforced", func(t *testing.T) {
		bs := BreakSettings{MaxBreaksPerDay: intPtr(1)}
		assert.Empty(t, bs.Evaluate(breaks))
	})

	t.Run("count reached", func(t *testing.T) {
		bs := BreakSettings{EnforceLimits: true, MaxBreaksPerDay: intPtr(2)}
		warnings := bs.Evaluate(breaks)
		require.Len(t, warnings, 1)
		assert.Equal(t, "Break Limit Warning", warnings[0].Title)
		assert.Equal(t, "You have reached the maximum breaks (2) for today.", warnings[0].Message)
	})

	t.Run("duration reached", func(t *testing.T) {
		bs := BreakSettings{EnforceLimits: true, MaxBreakDurationMinutes: intPtr(45)}
		warnings := bs.Evaluate(breaks)
		require.Len(t, warnings, 1)
		assert.Equal(t, "Break Duration Warning", warnings[0].Title)
		assert.Equal(t, "You have exceeded the total break duration (45 minutes) for today.", warnings[0].Message)
	})

	t.Run("both under limit", func(t *testing.T) {
		bs := BreakSettings{EnforceLimits: true, MaxBreaksPerDay: intPtr(3), MaxBreakDurationMinutes: intPtr(60)}
		assert.Empty(t, bs.Evaluate(breaks))
	})
}
