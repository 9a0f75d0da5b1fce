package entities

import (
	"fmt"
	"time"
)

// Lottery represents a single raffle with its reward pool and entry window
type Lottery struct {
	ID              int64         `db:"id"`
	Name            string        `db:"name"`
	StartDate       time.Time     `db:"start_date"`
	EndDate         time.Time     `db:"end_date"`
	Status          LotteryStatus `db:"status"`
	RewardPrice     float64       `db:"reward_price"`
	MaxParticipants int           `db:"max_participants"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

// IsActive returns true while now is inside the entry window [start, end)
func (l *Lottery) IsActive(now time.Time) bool {
	return !now.Before(l.StartDate) && now.Before(l.EndDate)
}

// HasEnded returns true once the end date has been reached
func (l *Lottery) HasEnded(now time.Time) bool {
	return !now.Before(l.EndDate)
}

// AcceptsEntries returns true if a participant may register at the given time
func (l *Lottery) AcceptsEntries(now time.Time) bool {
	if !l.Status.AcceptsEntries() {
		return false
	}
	// Simulations are filled by the system and ignore the date window
	if l.Status == LotteryStatusSimulation {
		return true
	}
	return l.IsActive(now)
}

// IsFull returns true when the participant cap has been reached
func (l *Lottery) IsFull(participantCount int) bool {
	return l.MaxParticipants > 0 && participantCount >= l.MaxParticipants
}

// TransitionTo moves the lottery to next if the state machine allows it
func (l *Lottery) TransitionTo(next LotteryStatus) error {
	if !l.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, l.Status, next)
	}
	l.Status = next
	return nil
}

// LotterySummary is a lottery together with its derived participant count
type LotterySummary struct {
	Lottery
	ParticipantCount int `db:"participant_count"`
}

// Participant is an entry joined with the registering user's identity
type Participant struct {
	EntryID      int64     `db:"entry_id"`
	UserID       int64     `db:"user_id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	Numbers      string    `db:"numbers"`
	LuckyNumbers string    `db:"lucky_numbers"`
	CreatedAt    time.Time `db:"created_at"`
}

// FullName returns the participant's display name
func (p *Participant) FullName() string {
	return fullName(p.FirstName, p.LastName)
}
