package services

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"apploto/domain/entities"
)

const (
	minNameLength     = 2
	maxNameLength     = 50
	maxEmailLength    = 255
	minPasswordLength = 8
	maxMessageLength  = 1000
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// checkNumberSet validates size, range and distinctness of a chosen set
func checkNumberSet(values entities.NumberSet, size, lo, hi int) string {
	normalized := entities.NewNumberSet(values...)
	switch {
	case len(normalized) != len(values):
		return "numbers must be distinct"
	case len(values) != size:
		return fmt.Sprintf("exactly %d numbers are required", size)
	case !values.InRange(lo, hi):
		return fmt.Sprintf("numbers must be between %d and %d", lo, hi)
	}
	return ""
}

// validateChoice checks a participant's main and lucky numbers
func validateChoice(numbers, lucky entities.NumberSet) error {
	verr := NewValidationError()
	if msg := checkNumberSet(numbers, entities.NumbersPerEntry, entities.MinNumber, entities.MaxNumber); msg != "" {
		verr.Add("numbers", msg)
	}
	if msg := checkNumberSet(lucky, entities.LuckyNumbersPerEntry, entities.MinLuckyNumber, entities.MaxLuckyNumber); msg != "" {
		verr.Add("lucky_numbers", msg)
	}
	return verr.ErrOrNil()
}

// validateDrawNumbers checks administrator-supplied winning numbers
func validateDrawNumbers(numbers *entities.DrawNumbers) error {
	if err := validateChoice(numbers.Numbers, numbers.LuckyNumbers); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNumbers, err)
	}
	return nil
}

func validateName(verr *ValidationError, field, value string) {
	trimmed := strings.TrimSpace(value)
	n := utf8.RuneCountInString(trimmed)
	if n < minNameLength || n > maxNameLength {
		verr.Add(field, fmt.Sprintf("must be between %d and %d characters", minNameLength, maxNameLength))
	}
}

func validateEmail(verr *ValidationError, field, value string) {
	if len(value) > maxEmailLength {
		verr.Add(field, fmt.Sprintf("must be at most %d characters", maxEmailLength))
		return
	}
	if _, err := mail.ParseAddress(value); err != nil || !emailPattern.MatchString(value) {
		verr.Add(field, "must be a valid email address")
	}
}

func validatePassword(verr *ValidationError, field, value string) {
	if len(value) < minPasswordLength {
		verr.Add(field, fmt.Sprintf("must be at least %d characters", minPasswordLength))
		return
	}

	var lower, upper, digit, special bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		verr.Add(field, "must contain a lowercase letter, an uppercase letter, a digit and a special character")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
