package entities

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Draw number domains
const (
	NumbersPerEntry = 5
	MinNumber       = 1
	MaxNumber       = 49

	LuckyNumbersPerEntry = 2
	MinLuckyNumber       = 1
	MaxLuckyNumber       = 9
)

// LotteryResult holds the winning numbers of a validated lottery.
// It is created exactly once per lottery and never updated.
type LotteryResult struct {
	ID                  int64     `db:"id"`
	LotteryID           int64     `db:"lottery_id"`
	WinningNumbers      string    `db:"winning_numbers"`
	WinningLuckyNumbers string    `db:"winning_lucky_numbers"`
	CreatedAt           time.Time `db:"created_at"`
}

// Numbers parses the stored winning numbers
func (r *LotteryResult) Numbers() (NumberSet, error) {
	return ParseNumberSet(r.WinningNumbers)
}

// LuckyNumbers parses the stored winning lucky numbers
func (r *LotteryResult) LuckyNumbers() (NumberSet, error) {
	return ParseNumberSet(r.WinningLuckyNumbers)
}

// DrawNumbers is a pair of main and lucky number sets
type DrawNumbers struct {
	Numbers      NumberSet
	LuckyNumbers NumberSet
}

// GenerateDrawNumbers draws 5 distinct numbers in 1-49 and 2 distinct lucky numbers in 1-9
func GenerateDrawNumbers() (DrawNumbers, error) {
	numbers, err := sampleDistinct(NumbersPerEntry, MinNumber, MaxNumber)
	if err != nil {
		return DrawNumbers{}, err
	}
	lucky, err := sampleDistinct(LuckyNumbersPerEntry, MinLuckyNumber, MaxLuckyNumber)
	if err != nil {
		return DrawNumbers{}, err
	}
	return DrawNumbers{Numbers: numbers, LuckyNumbers: lucky}, nil
}

// sampleDistinct picks k distinct values from [lo, hi] using a cryptographic source
func sampleDistinct(k, lo, hi int) (NumberSet, error) {
	pool := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		pool = append(pool, v)
	}
	if k > len(pool) {
		return nil, fmt.Errorf("cannot sample %d distinct values from [%d, %d]", k, lo, hi)
	}

	// Partial Fisher-Yates shuffle
	for i := 0; i < k; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool)-i)))
		if err != nil {
			return nil, fmt.Errorf("failed to generate draw number: %w", err)
		}
		swap := i + int(j.Int64())
		pool[i], pool[swap] = pool[swap], pool[i]
	}
	return NewNumberSet(pool[:k]...), nil
}
