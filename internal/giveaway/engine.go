// Package giveaway implements the campaign engine: the scheduler that hands a
// campaign's prizes out to randomly selected eligible community members at
// randomized instants across the campaign window.
package giveaway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randy-tg/randybot/internal/domain"
)

// CampaignStore is the persistent campaign collection the engine reads and
// transitions.
type CampaignStore interface {
	ListByStatus(ctx context.Context, status domain.CampaignStatus) ([]domain.Campaign, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.CampaignStatus) (bool, error)
}

// SlotStore is the slot collection. Assign must be a conditional write guarded
// by assigned = false; it reports whether this caller won the write.
type SlotStore interface {
	ListDue(ctx context.Context, campaignID uuid.UUID, now time.Time) ([]domain.Slot, error)
	Assign(ctx context.Context, slotID int64, w domain.Winner) (bool, error)
	Counts(ctx context.Context, campaignID uuid.UUID) (total, assigned int, err error)
	AssignedUserIDs(ctx context.Context, campaignID uuid.UUID) ([]int64, error)
}

// Directory is the read-only candidate population.
type Directory interface {
	ListActive(ctx context.Context) ([]domain.User, error)
	MessageCounts(ctx context.Context, since time.Time) (map[int64]int, error)
}

// Settings exposes the global distribution gate and message templates.
type Settings interface {
	CommunityActive(ctx context.Context) (bool, error)
	Template(ctx context.Context, key string) (string, error)
}

// Notifier delivers winner notifications. All methods are best-effort from the
// engine's point of view: failures are logged and never undo an assignment.
type Notifier interface {
	SendDirect(ctx context.Context, userID int64, text string) error
	Announce(ctx context.Context, text string) (messageID int, err error)
	Pin(ctx context.Context, messageID int) error
}

// Assignment is one slot handed out during a tick, with the winner snapshot
// already recorded on the slot.
type Assignment struct {
	Campaign domain.Campaign
	Slot     domain.Slot
}

type Engine struct {
	campaigns CampaignStore
	slots     SlotStore
	dir       Directory
	settings  Settings
	notifier  Notifier
	loc       *time.Location

	mu  sync.Mutex
	rng *rand.Rand
}

type Deps struct {
	Campaigns CampaignStore
	Slots     SlotStore
	Directory Directory
	Settings  Settings
	Notifier  Notifier

	// Location for the "today" eligibility window; defaults to the host zone.
	Location *time.Location
	// Rand drives winner selection; defaults to a time-seeded source. Tests
	// inject a fixed seed.
	Rand *rand.Rand
}

func New(deps Deps) *Engine {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		campaigns: deps.Campaigns,
		slots:     deps.Slots,
		dir:       deps.Directory,
		settings:  deps.Settings,
		notifier:  deps.Notifier,
		loc:       loc,
		rng:       rng,
	}
}

// Tick processes every due, unassigned slot of every active campaign once.
// It is the sole entry point of the engine and is safe to invoke from
// overlapping callers: the slot store's conditional write is what keeps
// each slot assigned at most once.
//
// A failure on one campaign does not stop the others; per-campaign errors are
// joined into the returned error alongside whatever assignments were made.
func (e *Engine) Tick(ctx context.Context, now time.Time) ([]Assignment, error) {
	active, err := e.settings.CommunityActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("read community flag: %w", err)
	}
	if !active {
		return nil, nil
	}

	campaigns, err := e.campaigns.ListByStatus(ctx, domain.CampaignActive)
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}

	var (
		made []Assignment
		errs []error
	)
	for _, c := range campaigns {
		assigned, err := e.processCampaign(ctx, c, now)
		made = append(made, assigned...)
		if err != nil {
			errs = append(errs, fmt.Errorf("campaign %s: %w", c.ID, err))
		}
	}
	return made, errors.Join(errs...)
}

func (e *Engine) processCampaign(ctx context.Context, c domain.Campaign, now time.Time) ([]Assignment, error) {
	due, err := e.slots.ListDue(ctx, c.ID, now)
	if err != nil {
		return nil, fmt.Errorf("list due slots: %w", err)
	}

	var made []Assignment
	for _, s := range due {
		// Eligibility is recomputed per slot: each assignment can shrink the
		// pool when the campaign is one-per-user, and bans must take effect
		// immediately.
		candidates, err := e.resolveEligible(ctx, c, now)
		if err != nil {
			return made, err
		}

		winner, ok := e.pick(candidates)
		if !ok {
			// Nobody eligible right now; the slot stays unassigned and is
			// retried on a later tick.
			continue
		}

		snapshot := domain.Winner{
			UserID:    winner.ID,
			Username:  winner.Username,
			FirstName: winner.FirstName,
			At:        now,
		}
		won, err := e.slots.Assign(ctx, s.ID, snapshot)
		if err != nil {
			return made, fmt.Errorf("assign slot %d: %w", s.ID, err)
		}
		if !won {
			// An overlapping tick got there first.
			slog.Debug("slot already assigned", "slot_id", s.ID, "campaign_id", c.ID)
			continue
		}

		s.Assigned = true
		s.Winner = &snapshot
		made = append(made, Assignment{Campaign: c, Slot: s})

		e.notify(ctx, c, s, winner)
	}

	if err := e.maybeComplete(ctx, c); err != nil {
		return made, err
	}
	return made, nil
}

// maybeComplete moves the campaign to completed once every slot is assigned.
// The guarded transition makes redundant calls a no-op.
func (e *Engine) maybeComplete(ctx context.Context, c domain.Campaign) error {
	total, assigned, err := e.slots.Counts(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("count slots: %w", err)
	}
	if total == 0 || assigned < total {
		return nil
	}

	changed, err := e.campaigns.UpdateStatusFrom(ctx, c.ID, domain.CampaignActive, domain.CampaignCompleted)
	if err != nil {
		return fmt.Errorf("complete campaign: %w", err)
	}
	if changed {
		slog.Info("campaign completed", "campaign_id", c.ID, "winners", assigned)
	}
	return nil
}
