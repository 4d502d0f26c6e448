package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/randy-tg/randybot/internal/domain"
)

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `telegram_id, first_name, username, banned, started_chat,
	last_seen, created_at, updated_at`

// FindOrCreate upserts the user row, refreshing the display fields and
// last-seen stamp on every contact.
func (r *UserRepo) FindOrCreate(ctx context.Context, telegramID int64, firstName, username string) (domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id, first_name, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE
		SET first_name = EXCLUDED.first_name, username = EXCLUDED.username,
		    last_seen = now(), updated_at = now()
		RETURNING `+userColumns,
		telegramID, firstName, username)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// ListActive returns all non-banned users, the base candidate pool for
// eligibility resolution.
func (r *UserRepo) ListActive(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE banned = FALSE`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// MessageCounts returns per-user message event counts since the given instant.
// A zero since means no lower bound.
func (r *UserRepo) MessageCounts(ctx context.Context, since time.Time) (map[int64]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, count(*) FROM messages WHERE sent_at >= $1 GROUP BY user_id`,
		since)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var (
			userID int64
			n      int
		)
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, fmt.Errorf("scan message count: %w", err)
		}
		counts[userID] = n
	}
	return counts, rows.Err()
}

// RecordMessage stores one message event for the eligibility counters.
func (r *UserRepo) RecordMessage(ctx context.Context, userID, chatID int64, sentAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO messages (user_id, chat_id, sent_at) VALUES ($1, $2, $3)`,
		userID, chatID, sentAt)
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}
	return nil
}

func (r *UserRepo) SetStartedChat(ctx context.Context, telegramID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET started_chat = TRUE, updated_at = now() WHERE telegram_id = $1`,
		telegramID)
	if err != nil {
		return fmt.Errorf("set started chat: %w", err)
	}
	return nil
}

func (r *UserRepo) SetBanned(ctx context.Context, telegramID int64, banned bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET banned = $1, updated_at = now() WHERE telegram_id = $2`,
		banned, telegramID)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.Username, &u.Banned, &u.StartedChat,
		&u.LastSeen, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
