package testutil

import (
	"fmt"
	"time"

	"apploto/domain/entities"
)

// CreateTestUser creates a USER account with default values
func CreateTestUser(first, last string) *entities.User {
	return &entities.User{
		FirstName:    first,
		LastName:     last,
		Email:        fmt.Sprintf("%s.%s@example.com", first, last),
		PasswordHash: "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtesth",
		Role:         entities.RoleUser,
		Notification: true,
	}
}

// CreateTestUserWithRole creates an account with a specific role
func CreateTestUserWithRole(first, last string, role entities.Role) *entities.User {
	user := CreateTestUser(first, last)
	user.Role = role
	return user
}

// CreateTestLottery creates an EN_COUR lottery whose window contains now
func CreateTestLottery(name string) *entities.Lottery {
	now := time.Now().UTC().Truncate(time.Second)
	return &entities.Lottery{
		Name:            name,
		StartDate:       now.Add(-time.Hour),
		EndDate:         now.Add(24 * time.Hour),
		Status:          entities.LotteryStatusOpen,
		RewardPrice:     1000,
		MaxParticipants: 100,
	}
}

// CreateTestLotteryWithStatus creates a lottery in the given status
func CreateTestLotteryWithStatus(name string, status entities.LotteryStatus) *entities.Lottery {
	lottery := CreateTestLottery(name)
	lottery.Status = status
	return lottery
}

// CreateExpiredTestLottery creates an EN_COUR lottery whose end date has passed
func CreateExpiredTestLottery(name string) *entities.Lottery {
	lottery := CreateTestLottery(name)
	lottery.StartDate = lottery.StartDate.Add(-48 * time.Hour)
	lottery.EndDate = time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	return lottery
}

// CreateTestEntry creates an entry with the given choices
func CreateTestEntry(userID, lotteryID int64, numbers, lucky string) *entities.Entry {
	return &entities.Entry{
		UserID:       userID,
		LotteryID:    lotteryID,
		Numbers:      numbers,
		LuckyNumbers: lucky,
	}
}
