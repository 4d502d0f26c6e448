package domain

import (
	"time"

	"github.com/google/uuid"
)

// Slot is one reward opportunity within a campaign, due at SchedTime.
// It is either fully unassigned (Winner nil) or fully assigned (Winner set);
// assignment happens exactly once and never reverts.
type Slot struct {
	ID         int64
	CampaignID uuid.UUID
	SchedTime  time.Time
	Assigned   bool
	Winner     *Winner
}

// Winner is the identity snapshot captured on a slot at assignment time.
// It is copied, not joined: later changes to the user record do not touch it.
type Winner struct {
	UserID    int64
	Username  string
	FirstName string
	At        time.Time
}
