package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeLotteryCreated       EventType = "lottery_created"
	EventTypeLotteryStatusChanged EventType = "lottery_status_changed"
	EventTypeEntryRegistered      EventType = "entry_registered"
	EventTypeDrawFinalized        EventType = "draw_finalized"
	EventTypeUserRegistered       EventType = "user_registered"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// LotteryCreatedEvent is published when an admin opens a new lottery
type LotteryCreatedEvent struct {
	LotteryID       int64     `json:"lottery_id"`
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	RewardPrice     float64   `json:"reward_price"`
	MaxParticipants int       `json:"max_participants"`
	Simulation      bool      `json:"simulation"`
}

func (e LotteryCreatedEvent) Type() EventType {
	return EventTypeLotteryCreated
}

// LotteryStatusChangedEvent represents a lottery status transition
type LotteryStatusChangedEvent struct {
	LotteryID int64  `json:"lottery_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

func (e LotteryStatusChangedEvent) Type() EventType {
	return EventTypeLotteryStatusChanged
}

// EntryRegisteredEvent represents a player entering a lottery
type EntryRegisteredEvent struct {
	EntryID   int64 `json:"entry_id"`
	LotteryID int64 `json:"lottery_id"`
	UserID    int64 `json:"user_id"`
}

func (e EntryRegisteredEvent) Type() EventType {
	return EventTypeEntryRegistered
}

// PodiumEntry is one paid winner carried by DrawFinalizedEvent
type PodiumEntry struct {
	UserID   int64   `json:"user_id"`
	Name     string  `json:"name"`
	Rank     int     `json:"rank"`
	Score    int     `json:"score"`
	Winnings float64 `json:"winnings"`
}

// DrawFinalizedEvent is published once a lottery's results are persisted
type DrawFinalizedEvent struct {
	LotteryID           int64         `json:"lottery_id"`
	LotteryName         string        `json:"lottery_name"`
	ResultID            int64         `json:"result_id"`
	WinningNumbers      string        `json:"winning_numbers"`
	WinningLuckyNumbers string        `json:"winning_lucky_numbers"`
	RewardPrice         float64       `json:"reward_price"`
	Distributed         float64       `json:"distributed"`
	ParticipantCount    int           `json:"participant_count"`
	Simulation          bool          `json:"simulation"`
	Podium              []PodiumEntry `json:"podium"`
}

func (e DrawFinalizedEvent) Type() EventType {
	return EventTypeDrawFinalized
}

// UserRegisteredEvent represents a new account creation
type UserRegisteredEvent struct {
	UserID       int64  `json:"user_id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	Notification bool   `json:"notification"`
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}
