package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/randy-tg/randybot/internal/domain"
	"github.com/randy-tg/randybot/internal/repository"
)

type ctxKey string

const UserKey ctxKey = "user"

// GetUser extracts the loaded user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// UserLoader returns middleware that upserts the sender into the candidate
// directory on every update, refreshing the display fields the winner
// snapshots are later copied from, and puts the user into context.
func UserLoader(users *repository.UserRepo) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User
			if update.Message != nil {
				from = update.Message.From
			} else if update.EditedMessage != nil {
				from = update.EditedMessage.From
			}

			if from == nil || from.IsBot {
				next(ctx, b, update)
				return
			}

			user, err := users.FindOrCreate(ctx, from.ID, from.FirstName, from.Username)
			if err == nil {
				ctx = context.WithValue(ctx, UserKey, &user)
			}

			next(ctx, b, update)
		}
	}
}
