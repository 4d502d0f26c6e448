package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// MessagePeriod bounds the window over which message activity is counted
// for eligibility.
type MessagePeriod string

const (
	PeriodNone  MessagePeriod = "none"
	PeriodToday MessagePeriod = "today"
	PeriodWeek  MessagePeriod = "week"
	PeriodAll   MessagePeriod = "all"
)

func ParseMessagePeriod(s string) (MessagePeriod, bool) {
	switch MessagePeriod(s) {
	case PeriodNone, PeriodToday, PeriodWeek, PeriodAll:
		return MessagePeriod(s), true
	}
	return "", false
}

// Campaign is one reward-distribution run: WinnerCount prizes handed out at
// random instants across a window of DistributionHours from StartTime.
type Campaign struct {
	ID                uuid.UUID
	PrizeText         string
	PrizeValue        decimal.Decimal
	WinnerCount       int
	DistributionHours int
	MinMessages       int
	MessagePeriod     MessagePeriod
	OnePerUser        bool
	SendAnnouncement  bool
	PinMessage        bool
	Status            CampaignStatus
	StartTime         time.Time
	CreatedBy         int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Window is the span over which the campaign's slots are spread.
func (c *Campaign) Window() time.Duration {
	return time.Duration(c.DistributionHours) * time.Hour
}
