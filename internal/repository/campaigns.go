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

type CampaignRepo struct {
	db *pgxpool.Pool
}

func NewCampaignRepo(db *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{db: db}
}

const campaignColumns = `id, prize_text, prize_value, winner_count, distribution_hours,
	min_messages, message_period, one_per_user, send_announcement, pin_message,
	status, start_time, created_by, created_at, updated_at`

// Create stores a campaign together with all of its slots in one transaction,
// so a campaign is never observable without its full slot list.
func (r *CampaignRepo) Create(ctx context.Context, c domain.Campaign, schedTimes []time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO campaigns (id, prize_text, prize_value, winner_count, distribution_hours,
			min_messages, message_period, one_per_user, send_announcement, pin_message,
			status, start_time, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.PrizeText, c.PrizeValue, c.WinnerCount, c.DistributionHours,
		c.MinMessages, string(c.MessagePeriod), c.OnePerUser, c.SendAnnouncement, c.PinMessage,
		string(c.Status), c.StartTime, c.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	for _, t := range schedTimes {
		_, err = tx.Exec(ctx,
			`INSERT INTO slots (campaign_id, sched_time) VALUES ($1, $2)`,
			c.ID, t)
		if err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *CampaignRepo) ListByStatus(ctx context.Context, status domain.CampaignStatus) ([]domain.Campaign, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE status = $1 ORDER BY start_time`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// UpdateStatusFrom performs a guarded status transition and reports whether the
// row actually changed. A false return means the campaign was no longer in the
// expected state, which callers treat as an already-handled no-op.
func (r *CampaignRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.CampaignStatus) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("update campaign status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var (
		c      domain.Campaign
		period string
		status string
	)
	err := row.Scan(&c.ID, &c.PrizeText, &c.PrizeValue, &c.WinnerCount, &c.DistributionHours,
		&c.MinMessages, &period, &c.OnePerUser, &c.SendAnnouncement, &c.PinMessage,
		&status, &c.StartTime, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Campaign{}, err
	}
	c.MessagePeriod = domain.MessagePeriod(period)
	c.Status = domain.CampaignStatus(status)
	return c, nil
}
