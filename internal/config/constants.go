package config

import "time"

const (
	// Scheduler
	MinTickInterval = 5 * time.Second
	TickTimeout     = 2 * time.Minute

	// Campaign limits accepted from the /randy command
	MaxWinnerCount       = 1000
	MaxDistributionHours = 24 * 30

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Database pool
	DBMaxConns = 20
	DBMinConns = 5
)
