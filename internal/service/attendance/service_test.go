package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/events"
	"github.com/pagemantra/worktrack-backend-go/internal/repository/memory"
	authzservice "github.com/pagemantra/worktrack-backend-go/internal/service/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      attendance.AttendanceService
	settings attendance.BreakSettingsService
	sessions attendance.SessionRepository
	notifier *memory.Notifier
	events   *events.Memory
	clock    *clock.Fixed
	org      memory.Org
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	a, err := authzservice.NewAuthorizer(user.RolePermissions)
	require.NoError(t, err)

	f := &fixture{
		sessions: memory.NewSessionRepository(store),
		notifier: &memory.Notifier{},
		events:   &events.Memory{},
		clock:    &clock.Fixed{T: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	f.org = store.SeedOrg(f.clock.Now())
	f.settings = NewBreakSettingsService(memory.NewBreakSettingsRepository(store), memory.NewTeamRepository(store), a, nil, f.clock)
	f.svc = NewAttendanceService(f.sessions, memory.NewUserRepository(store), f.settings, a, f.notifier, f.events, f.clock, 8)
	return f
}

func as(u user.User) context.Context {
	return user.WithActor(context.Background(), u.Actor())
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) submitWorksheet(t *testing.T, u user.User) {
	t.Helper()
	_, err := f.sessions.SetWorksheetSubmitted(context.Background(), u.ID, clock.Today(f.clock), true)
	require.NoError(t, err)
}

func TestClockInOnce(t *testing.T) {
	f := setup(t)
	ctx := as(f.org.Associate)

	got, err := f.svc.ClockIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusActive, got.Status)
	assert.Equal(t, "2025-03-10", got.Date)
	assert.Empty(t, got.Breaks)

	_, err = f.svc.ClockIn(ctx)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
	assert.Equal(t, []string{events.AttendanceClockIn}, f.events.Types())
}

func TestConcurrentClockInSingleWinner(t *testing.T) {
	f := setup(t)
	ctx := as(f.org.Associate)

	const n = 20
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ClockIn(ctx)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, []string{events.AttendanceClockIn}, f.events.Types())
}

func TestBreakTransitions(t *testing.T) {
	f := setup(t)
	ctx := as(f.org.Associate)

	_, err := f.svc.StartBreak(ctx, attendance.StartBreakRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)

	_, err = f.svc.ClockIn(ctx)
	require.NoError(t, err)

	_, err = f.svc.EndBreak(ctx)
	assert.ErrorIs(t, err, attendance.ErrNoActiveBreak)

	f.clock.Advance(time.Hour)
	onBreak, err := f.svc.StartBreak(ctx, attendance.StartBreakRequest{BreakType: attendance.BreakLunch})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusOnBreak, onBreak.Status)
	require.NotNil(t, onBreak.CurrentBreakID)
	require.Len(t, onBreak.Breaks, 1)
	assert.Equal(t, attendance.BreakLunch, onBreak.Breaks[0].BreakType)

	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)

	f.clock.Advance(25 * time.Minute)
	back, err := f.svc.EndBreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusActive, back.Status)
	assert.Nil(t, back.CurrentBreakID)
	assert.Equal(t, 25, back.Breaks[0].DurationMinutes)

	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{BreakType: "nap"})
	assert.Error(t, err)
}

func TestClockOutRequiresWorksheet(t *testing.T) {
	f := setup(t)
	ctx := as(f.org.Associate)

	_, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)

	_, err = f.svc.ClockIn(ctx)
	require.NoError(t, err)

	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrWorksheetRequired)

	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{Force: true})
	assert.ErrorIs(t, err, attendance.ErrForceNotAllowed)

	current, err := f.svc.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, attendance.StatusActive, current.Status)

	f.submitWorksheet(t, f.org.Associate)
	f.clock.Advance(4 * time.Hour)
	done, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCompleted, done.Status)
	assert.Equal(t, 4.0, done.TotalWorkHours)
	assert.Zero(t, done.OvertimeHours)

	current, err = f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestAdminForceClockOut(t *testing.T) {
	f := setup(t)
	ctx := as(f.org.Admin)

	_, err := f.svc.ClockIn(ctx)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)

	done, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{Force: true})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCompleted, done.Status)
	assert.False(t, done.WorksheetSubmitted)
	assert.Equal(t, []string{events.AttendanceClockIn, events.AttendanceClockOut}, f.events.Types())
}

func TestClockOutEndsOpenBreakAndAlertsOvertime(t *testing.T) {
	f := setup(t)
	ctx := as(f.org.Associate)

	_, err := f.svc.ClockIn(ctx)
	require.NoError(t, err)
	f.clock.Advance(9 * time.Hour)
	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	f.submitWorksheet(t, f.org.Associate)
	done, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{})
	require.NoError(t, err)
	assert.Nil(t, done.CurrentBreakID)
	require.NotNil(t, done.Breaks[0].EndTime)
	assert.Equal(t, 60, done.TotalBreakMinutes)
	assert.Equal(t, 9.0, done.TotalWorkHours)
	assert.Equal(t, 1.0, done.OvertimeHours)

	alerts := f.notifier.To(memory.ManagerID)
	require.Len(t, alerts, 1)
	assert.Equal(t, notification.TypeOvertimeAlert, alerts[0].Type)
	assert.Equal(t, "Arjun Associate worked 1.0 hours overtime today.", alerts[0].Message)
	assert.Equal(t, memory.AssociateID, *alerts[0].RelatedID)
}

func TestBreakLimitsWarnButAllow(t *testing.T) {
	f := setup(t)
	_, err := f.settings.Create(as(f.org.Manager), attendance.CreateBreakSettingsRequest{
		TeamID:          memory.TeamID,
		MaxBreaksPerDay: ptr(1),
		EnforceLimits:   true,
	})
	require.NoError(t, err)

	ctx := as(f.org.Associate)
	_, err = f.svc.ClockIn(ctx)
	require.NoError(t, err)

	_, err = f.svc.StartBreak(ctx, attendance.StartBreakRequest{})
	require.NoError(t, err)
	_, err = f.svc.EndBreak(ctx)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.Sent())

	second, err := f.svc.StartBreak(ctx, attendance.StartBreakRequest{})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusOnBreak, second.Status)
	assert.Len(t, second.Breaks, 2)

	warnings := f.notifier.To(memory.AssociateID)
	require.Len(t, warnings, 1)
	assert.Equal(t, notification.TypeBreakLimitWarning, warnings[0].Type)
	assert.Equal(t, "Break Limit Warning", warnings[0].Title)
	assert.Equal(t, second.ID, *warnings[0].RelatedID)
}

func TestTodayAndHistoryScoped(t *testing.T) {
	f := setup(t)
	for _, u := range []user.User{f.org.Associate, f.org.Peer, f.org.Outsider} {
		_, err := f.svc.ClockIn(as(u))
		require.NoError(t, err)
	}

	_, err := f.svc.Today(as(f.org.Associate))
	assert.ErrorIs(t, err, authz.ErrForbidden)

	lead, err := f.svc.Today(as(f.org.Lead))
	require.NoError(t, err)
	assert.Len(t, lead, 2)

	admin, err := f.svc.Today(as(f.org.Admin))
	require.NoError(t, err)
	assert.Len(t, admin, 3)

	own, err := f.svc.History(as(f.org.Associate), attendance.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, memory.AssociateID, own.Items[0].EmployeeID)

	narrowed, err := f.svc.History(as(f.org.Associate), attendance.HistoryFilter{EmployeeID: ptr(memory.PeerID)})
	require.NoError(t, err)
	assert.Empty(t, narrowed.Items)

	mgr2, err := f.svc.History(as(f.org.Manager2), attendance.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, mgr2.Items, 1)
	assert.Equal(t, memory.OutsiderID, mgr2.Items[0].EmployeeID)

	_, err = f.svc.History(as(f.org.Admin), attendance.HistoryFilter{StartDate: ptr("2025-03-11"), EndDate: ptr("2025-03-10")})
	assert.Error(t, err)
}

func TestCloseStaleSessions(t *testing.T) {
	f := setup(t)
	_, err := f.svc.ClockIn(as(f.org.Associate))
	require.NoError(t, err)
	_, err = f.svc.StartBreak(as(f.org.Associate), attendance.StartBreakRequest{})
	require.NoError(t, err)

	n, err := f.svc.CloseStaleSessions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(24 * time.Hour)
	n, err = f.svc.CloseStaleSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	page, err := f.svc.History(as(f.org.Associate), attendance.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, attendance.StatusIncomplete, page.Items[0].Status)
	assert.NotNil(t, page.Items[0].LogoutTime)

	_, err = f.svc.ClockIn(as(f.org.Associate))
	assert.NoError(t, err)
}

func TestCloseStaleSessionsCreditsNoHours(t *testing.T) {
	f := setup(t)
	_, err := f.svc.ClockIn(as(f.org.Associate))
	require.NoError(t, err)

	f.clock.Advance(15*time.Hour + 5*time.Minute)
	n, err := f.svc.CloseStaleSessions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	page, err := f.svc.History(as(f.org.Associate), attendance.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	got := page.Items[0]
	assert.Equal(t, attendance.StatusIncomplete, got.Status)
	require.NotNil(t, got.LogoutTime)
	assert.True(t, got.LogoutTime.Equal(time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)))
	assert.Zero(t, got.TotalWorkHours)
	assert.Zero(t, got.OvertimeHours)
	assert.Empty(t, f.notifier.Sent())
}

func TestBreakSettingsOwnership(t *testing.T) {
	f := setup(t)
	req := attendance.CreateBreakSettingsRequest{TeamID: memory.TeamID, MaxBreaksPerDay: ptr(3)}

	_, err := f.settings.Create(as(f.org.Lead), req)
	assert.ErrorIs(t, err, authz.ErrForbidden)
	_, err = f.settings.Create(as(f.org.Manager2), req)
	assert.ErrorIs(t, err, team.ErrTeamModifyForbidden)

	created, err := f.settings.Create(as(f.org.Manager), req)
	require.NoError(t, err)
	assert.Equal(t, 60, *created.LunchBreakDuration)
	assert.Equal(t, 15, *created.ShortBreakDuration)

	_, err = f.settings.Create(as(f.org.Admin), req)
	assert.ErrorIs(t, err, attendance.ErrBreakSettingsExist)

	got, err := f.settings.Get(as(f.org.Associate), memory.TeamID)
	require.NoError(t, err)
	assert.Equal(t, 3, *got.MaxBreaksPerDay)
	_, err = f.settings.Get(as(f.org.Outsider), memory.TeamID)
	assert.ErrorIs(t, err, team.ErrTeamAccessDenied)

	updated, err := f.settings.Update(as(f.org.Admin), memory.TeamID, attendance.UpdateBreakSettingsRequest{EnforceLimits: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.EnforceLimits)
	assert.Equal(t, 3, *updated.MaxBreaksPerDay)

	_, err = f.settings.Update(as(f.org.Manager), memory.Team2ID, attendance.UpdateBreakSettingsRequest{})
	assert.ErrorIs(t, err, team.ErrTeamModifyForbidden)

	policy, err := f.settings.ForEmployee(context.Background(), memory.AssociateID)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Equal(t, memory.TeamID, policy.TeamID)

	none, err := f.settings.ForEmployee(context.Background(), memory.OutsiderID)
	require.NoError(t, err)
	assert.Nil(t, none)
}
