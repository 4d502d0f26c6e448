package giveaway

import (
	"context"
	"fmt"
	"time"

	"github.com/randy-tg/randybot/internal/domain"
)

// resolveEligible computes the current candidate set for one slot of the
// campaign. It is evaluated fresh at tick time: a user banned after campaign
// creation drops out, a user who newly meets the activity bar gets in.
// An empty result is a normal outcome, not an error.
func (e *Engine) resolveEligible(ctx context.Context, c domain.Campaign, now time.Time) ([]domain.User, error) {
	users, err := e.dir.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	if c.MinMessages > 0 && c.MessagePeriod != domain.PeriodNone {
		counts, err := e.dir.MessageCounts(ctx, periodStart(c.MessagePeriod, now, e.loc))
		if err != nil {
			return nil, fmt.Errorf("count messages: %w", err)
		}
		filtered := users[:0]
		for _, u := range users {
			if counts[u.ID] >= c.MinMessages {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	if c.OnePerUser {
		won, err := e.slots.AssignedUserIDs(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list previous winners: %w", err)
		}
		winners := make(map[int64]struct{}, len(won))
		for _, id := range won {
			winners[id] = struct{}{}
		}
		filtered := users[:0]
		for _, u := range users {
			if _, already := winners[u.ID]; !already {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	return users, nil
}

// periodStart returns the lower bound of the message-counting window.
// A zero time means no lower bound ("all").
func periodStart(p domain.MessagePeriod, now time.Time, loc *time.Location) time.Time {
	switch p {
	case domain.PeriodToday:
		local := now.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	case domain.PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}
