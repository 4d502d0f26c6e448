package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/randy-tg/randybot/internal/domain"
)

type SlotRepo struct {
	db *pgxpool.Pool
}

func NewSlotRepo(db *pgxpool.Pool) *SlotRepo {
	return &SlotRepo{db: db}
}

const slotColumns = `id, campaign_id, sched_time, assigned,
	assigned_user_id, assigned_username, assigned_first_name, assigned_at`

// ListDue returns the campaign's unassigned slots that are due at now.
func (r *SlotRepo) ListDue(ctx context.Context, campaignID uuid.UUID, now time.Time) ([]domain.Slot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+slotColumns+` FROM slots
		 WHERE campaign_id = $1 AND assigned = FALSE AND sched_time <= $2
		 ORDER BY sched_time`,
		campaignID, now)
	if err != nil {
		return nil, fmt.Errorf("list due slots: %w", err)
	}
	defer rows.Close()
	return collectSlots(rows)
}

func (r *SlotRepo) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Slot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE campaign_id = $1 ORDER BY sched_time`,
		campaignID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()
	return collectSlots(rows)
}

// Assign writes the winner snapshot onto a slot. The WHERE clause on
// assigned = FALSE makes this a compare-and-set: under overlapping ticks only
// one writer sees a row affected, the other gets false and must discard its
// selection.
func (r *SlotRepo) Assign(ctx context.Context, slotID int64, w domain.Winner) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE slots
		 SET assigned = TRUE, assigned_user_id = $1, assigned_username = $2,
		     assigned_first_name = $3, assigned_at = $4
		 WHERE id = $5 AND assigned = FALSE`,
		w.UserID, w.Username, w.FirstName, w.At, slotID)
	if err != nil {
		return false, fmt.Errorf("assign slot: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Counts reports total and assigned slot counts for a campaign.
func (r *SlotRepo) Counts(ctx context.Context, campaignID uuid.UUID) (int, int, error) {
	var total, assigned int
	err := r.db.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE assigned) FROM slots WHERE campaign_id = $1`,
		campaignID).Scan(&total, &assigned)
	if err != nil {
		return 0, 0, fmt.Errorf("count slots: %w", err)
	}
	return total, assigned, nil
}

// AssignedUserIDs lists the users already holding a win in the campaign.
func (r *SlotRepo) AssignedUserIDs(ctx context.Context, campaignID uuid.UUID) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT assigned_user_id FROM slots WHERE campaign_id = $1 AND assigned = TRUE`,
		campaignID)
	if err != nil {
		return nil, fmt.Errorf("list assigned users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assigned user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func collectSlots(rows pgx.Rows) ([]domain.Slot, error) {
	var slots []domain.Slot
	for rows.Next() {
		var (
			s          domain.Slot
			userID     *int64
			username   *string
			firstName  *string
			assignedAt *time.Time
		)
		err := rows.Scan(&s.ID, &s.CampaignID, &s.SchedTime, &s.Assigned,
			&userID, &username, &firstName, &assignedAt)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		if s.Assigned && userID != nil {
			w := domain.Winner{UserID: *userID}
			if username != nil {
				w.Username = *username
			}
			if firstName != nil {
				w.FirstName = *firstName
			}
			if assignedAt != nil {
				w.At = *assignedAt
			}
			s.Winner = &w
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
