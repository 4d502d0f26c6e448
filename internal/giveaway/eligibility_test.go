package giveaway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randy-tg/randybot/internal/domain"
)

func TestResolveEligibleMessagePeriodToday(t *testing.T) {
	store := newMemStore()
	dir := newMemDirectory()

	loc := time.UTC
	now := time.Date(2026, 9, 1, 15, 0, 0, 0, loc)
	midnight := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)

	// 4 messages today plus 10 last week: below the bar.
	dir.addUser(domain.User{ID: 1})
	dir.addMessages(1, midnight.Add(time.Hour), 4)
	dir.addMessages(1, now.AddDate(0, 0, -6), 10)

	// 5 messages today: eligible.
	dir.addUser(domain.User{ID: 2})
	dir.addMessages(2, midnight.Add(2*time.Hour), 5)

	c := activeCampaign(1)
	c.MinMessages = 5
	c.MessagePeriod = domain.PeriodToday

	e := newTestEngine(store, dir, newMemSettings(), newRecordingNotifier())
	users, err := e.resolveEligible(context.Background(), c, now)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(2), users[0].ID)
}

func TestResolveEligiblePeriods(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		period   domain.MessagePeriod
		msgAt    time.Time
		eligible bool
	}{
		{"today counts same day", domain.PeriodToday, now.Add(-2 * time.Hour), true},
		{"today drops yesterday", domain.PeriodToday, now.Add(-20 * time.Hour), false},
		{"week counts 6 days back", domain.PeriodWeek, now.AddDate(0, 0, -6), true},
		{"week drops 8 days back", domain.PeriodWeek, now.AddDate(0, 0, -8), false},
		{"all counts ancient history", domain.PeriodAll, now.AddDate(-1, 0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			dir := newMemDirectory()
			dir.addUser(domain.User{ID: 1})
			dir.addMessages(1, tt.msgAt, 3)

			c := activeCampaign(1)
			c.MinMessages = 3
			c.MessagePeriod = tt.period

			e := newTestEngine(store, dir, newMemSettings(), newRecordingNotifier())
			users, err := e.resolveEligible(context.Background(), c, now)
			require.NoError(t, err)
			if tt.eligible {
				assert.Len(t, users, 1)
			} else {
				assert.Empty(t, users)
			}
		})
	}
}

func TestResolveEligiblePeriodNoneSkipsActivityFilter(t *testing.T) {
	store := newMemStore()
	dir := newMemDirectory()
	dir.addUser(domain.User{ID: 1}) // zero messages ever

	c := activeCampaign(1)
	c.MinMessages = 100
	c.MessagePeriod = domain.PeriodNone

	e := newTestEngine(store, dir, newMemSettings(), newRecordingNotifier())
	users, err := e.resolveEligible(context.Background(), c, time.Now())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestResolveEligibleExcludesBanned(t *testing.T) {
	store := newMemStore()
	dir := newMemDirectory()
	dir.addUser(domain.User{ID: 1, Banned: true})
	dir.addUser(domain.User{ID: 2})

	e := newTestEngine(store, dir, newMemSettings(), newRecordingNotifier())
	users, err := e.resolveEligible(context.Background(), activeCampaign(1), time.Now())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(2), users[0].ID)
}

func TestResolveEligibleExcludesPreviousWinners(t *testing.T) {
	store := newMemStore()
	dir := newMemDirectory()
	now := time.Now()

	c := store.addCampaign(activeCampaign(2), dueTimes(2, now))
	other := store.addCampaign(activeCampaign(1), dueTimes(1, now))

	dir.addUser(domain.User{ID: 1})
	dir.addUser(domain.User{ID: 2})

	// User 1 already holds a win in campaign c.
	slots := store.slotsOf(c.ID)
	won, err := store.Assign(context.Background(), slots[0].ID, domain.Winner{UserID: 1, At: now})
	require.NoError(t, err)
	require.True(t, won)

	e := newTestEngine(store, dir, newMemSettings(), newRecordingNotifier())

	users, err := e.resolveEligible(context.Background(), c, now)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(2), users[0].ID)

	// A win in one campaign does not block the other.
	users, err = e.resolveEligible(context.Background(), other, now)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestPeriodStartRespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	// 01:00 UTC is already 04:00 in Moscow; local midnight is 21:00 UTC the
	// previous evening.
	now := time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC)
	start := periodStart(domain.PeriodToday, now, loc)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, loc).UnixNano(), start.UnixNano())
	assert.True(t, start.Before(now))
}
