package model

import (
	"time"

	"github.com/rs/xid"
)

type ActivityID string

func NewActivityID() ActivityID {
	return ActivityID(xid.New().String())
}

// TransitionSource identifies what triggered a status transition.
type TransitionSource string

const (
	TransitionSourceUser      TransitionSource = "user"
	TransitionSourceScheduler TransitionSource = "scheduler"
	TransitionSourcePickup    TransitionSource = "pickup"
)

// Activity records a single task status transition.
type Activity struct {
	ID         ActivityID
	TaskID     TaskID
	From       TaskStatus
	To         TaskStatus
	Source     TransitionSource
	OccurredAt time.Time
}

func NewActivity(taskID TaskID, from, to TaskStatus, source TransitionSource, at time.Time) Activity {
	return Activity{
		ID:         NewActivityID(),
		TaskID:     taskID,
		From:       from,
		To:         to,
		Source:     source,
		OccurredAt: at,
	}
}
