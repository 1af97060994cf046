package domain

import (
	"time"
)

// TimeFrame is the analytics query window
type TimeFrame string

const (
	TimeFrame24h TimeFrame = "24h"
	TimeFrame7d  TimeFrame = "7d"
	TimeFrameAll TimeFrame = "all"
)

// ParseTimeFrame maps raw input onto a recognized TimeFrame.
// Anything unrecognized, including the empty string, becomes TimeFrameAll.
func ParseTimeFrame(raw string) TimeFrame {
	switch tf := TimeFrame(raw); tf {
	case TimeFrame24h, TimeFrame7d, TimeFrameAll:
		return tf
	default:
		return TimeFrameAll
	}
}

// StartTime returns the inclusive lower bound of the window ending at now
func (tf TimeFrame) StartTime(now time.Time) time.Time {
	switch tf {
	case TimeFrame24h:
		return now.AddDate(0, 0, -1)
	case TimeFrame7d:
		return now.AddDate(0, 0, -7)
	default:
		return time.Unix(0, 0).UTC()
	}
}

// Analytics is the access count of one short identifier over a time frame
type Analytics struct {
	TimeFrame   TimeFrame `json:"timeFrame"`
	AccessCount int64     `json:"accessCount"`
}
