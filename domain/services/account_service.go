package services

import (
	"context"
	"fmt"
	"strings"

	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/events"

	log "github.com/sirupsen/logrus"
)

// accountService implements account management
type accountService struct {
	userRepo       interfaces.UserRepository
	hasher         interfaces.PasswordHasher
	eventPublisher interfaces.EventPublisher
}

// NewAccountService creates a new account service
func NewAccountService(userRepo interfaces.UserRepository, hasher interfaces.PasswordHasher, eventPublisher interfaces.EventPublisher) interfaces.AccountService {
	return &accountService{
		userRepo:       userRepo,
		hasher:         hasher,
		eventPublisher: eventPublisher,
	}
}

// Register creates a USER account
func (s *accountService) Register(ctx context.Context, input interfaces.RegisterInput) (*entities.User, error) {
	email := normalizeEmail(input.Email)

	verr := NewValidationError()
	validateName(verr, "first_name", input.FirstName)
	validateName(verr, "last_name", input.LastName)
	validateEmail(verr, "email", email)
	validatePassword(verr, "password", input.Password)
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         entities.RoleUser,
		Notification: input.Notification,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.eventPublisher.Publish(events.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		Notification: user.Notification,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish user registered event")
	}

	log.WithField("user_id", user.ID).Info("Registered new account")
	return user, nil
}

// GetAccount returns the account of a user
func (s *accountService) GetAccount(ctx context.Context, userID int64) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateAccount saves editable account details
func (s *accountService) UpdateAccount(ctx context.Context, userID int64, input interfaces.UpdateAccountInput) (*entities.User, error) {
	email := normalizeEmail(input.Email)

	verr := NewValidationError()
	validateName(verr, "first_name", input.FirstName)
	validateName(verr, "last_name", input.LastName)
	validateEmail(verr, "email", email)
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	user, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email != user.Email {
		other, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if other != nil && other.ID != user.ID {
			return nil, ErrEmailTaken
		}
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Email = email
	user.Notification = input.Notification
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the password after checking the current one
func (s *accountService) UpdatePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.GetAccount(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, newPassword); err == nil {
		return ErrSamePassword
	}

	verr := NewValidationError()
	validatePassword(verr, "new_password", newPassword)
	if err := verr.ErrOrNil(); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.WithField("user_id", user.ID).Info("Password updated")
	return nil
}
