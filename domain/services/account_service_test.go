package services

import (
	"context"
	"errors"
	"testing"

	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/domain/testhelpers"
	"apploto/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validRegistration() interfaces.RegisterInput {
	return interfaces.RegisterInput{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "Ada@Example.com",
		Password:     "Str0ng!pass",
		Notification: true,
	}
}

func TestAccountService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      interfaces.RegisterInput
		setupMocks func(*testhelpers.MockUserRepository, *testhelpers.MockPasswordHasher, *testhelpers.MockEventPublisher)
		wantErr    error
		wantFields []string
	}{
		{
			name:  "creates user account",
			input: validRegistration(),
			setupMocks: func(ur *testhelpers.MockUserRepository, h *testhelpers.MockPasswordHasher, ep *testhelpers.MockEventPublisher) {
				ur.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
				h.On("Hash", "Str0ng!pass").Return("hashed", nil)
				ur.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
					return u.Role == entities.RoleUser && u.PasswordHash == "hashed" && u.Email == "ada@example.com"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*entities.User).ID = 10
				}).Return(nil)
				ep.On("Publish", events.UserRegisteredEvent{
					UserID: 10, Email: "ada@example.com", FirstName: "Ada", Notification: true,
				}).Return(nil)
			},
		},
		{
			name:  "email taken",
			input: validRegistration(),
			setupMocks: func(ur *testhelpers.MockUserRepository, h *testhelpers.MockPasswordHasher, ep *testhelpers.MockEventPublisher) {
				ur.On("GetByEmail", mock.Anything, "ada@example.com").Return(&entities.User{ID: 3}, nil)
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "every field invalid",
			input: interfaces.RegisterInput{
				FirstName: "A",
				LastName:  "",
				Email:     "not-an-email",
				Password:  "short",
			},
			wantFields: []string{"first_name", "last_name", "email", "password"},
		},
		{
			name: "weak password",
			input: func() interfaces.RegisterInput {
				in := validRegistration()
				in.Password = "alllowercase1"
				return in
			}(),
			wantFields: []string{"password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userRepo := new(testhelpers.MockUserRepository)
			hasher := new(testhelpers.MockPasswordHasher)
			publisher := new(testhelpers.MockEventPublisher)
			if tt.setupMocks != nil {
				tt.setupMocks(userRepo, hasher, publisher)
			}

			svc := NewAccountService(userRepo, hasher, publisher)
			user, err := svc.Register(context.Background(), tt.input)

			switch {
			case len(tt.wantFields) > 0:
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				for _, f := range tt.wantFields {
					assert.Contains(t, verr.Fields, f)
				}
				userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(10), user.ID)
			}

			userRepo.AssertExpectations(t)
			hasher.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestAccountService_UpdateAccount(t *testing.T) {
	t.Parallel()

	existing := func() *entities.User {
		return &entities.User{ID: 10, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Role: entities.RoleUser}
	}

	t.Run("changes email when free", func(t *testing.T) {
		t.Parallel()

		userRepo := new(testhelpers.MockUserRepository)
		userRepo.On("GetByID", mock.Anything, int64(10)).Return(existing(), nil)
		userRepo.On("GetByEmail", mock.Anything, "countess@example.com").Return(nil, nil)
		userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Email == "countess@example.com" && u.Notification
		})).Return(nil)

		svc := NewAccountService(userRepo, new(testhelpers.MockPasswordHasher), new(testhelpers.MockEventPublisher))
		user, err := svc.UpdateAccount(context.Background(), 10, interfaces.UpdateAccountInput{FirstName: "Ada", LastName: "Lovelace", Email: " Countess@Example.com ", Notification: true})
		require.NoError(t, err)
		assert.Equal(t, "countess@example.com", user.Email)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects email of another account", func(t *testing.T) {
		t.Parallel()

		userRepo := new(testhelpers.MockUserRepository)
		userRepo.On("GetByID", mock.Anything, int64(10)).Return(existing(), nil)
		userRepo.On("GetByEmail", mock.Anything, "alan@example.com").Return(&entities.User{ID: 20}, nil)

		svc := NewAccountService(userRepo, new(testhelpers.MockPasswordHasher), new(testhelpers.MockEventPublisher))
		_, err := svc.UpdateAccount(context.Background(), 10, interfaces.UpdateAccountInput{FirstName: "Ada", LastName: "Lovelace", Email: "alan@example.com", Notification: false})
		assert.ErrorIs(t, err, ErrEmailTaken)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		userRepo := new(testhelpers.MockUserRepository)
		userRepo.On("GetByID", mock.Anything, int64(10)).Return(nil, nil)

		svc := NewAccountService(userRepo, new(testhelpers.MockPasswordHasher), new(testhelpers.MockEventPublisher))
		_, err := svc.UpdateAccount(context.Background(), 10, interfaces.UpdateAccountInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Notification: false})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAccountService_UpdatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		oldPassword string
		newPassword string
		setupMocks  func(*testhelpers.MockUserRepository, *testhelpers.MockPasswordHasher)
		wantErr     error
		wantField   string
		errContains string
	}{
		{
			name:        "updates password",
			oldPassword: "Old!pass1",
			newPassword: "New!pass2",
			setupMocks: func(ur *testhelpers.MockUserRepository, h *testhelpers.MockPasswordHasher) {
				h.On("Compare", "hash", "Old!pass1").Return(nil)
				h.On("Compare", "hash", "New!pass2").Return(errors.New("mismatch"))
				h.On("Hash", "New!pass2").Return("new-hash", nil)
				ur.On("UpdatePassword", mock.Anything, int64(10), "new-hash").Return(nil)
			},
		},
		{
			name:        "wrong current password",
			oldPassword: "guess",
			newPassword: "New!pass2",
			setupMocks: func(ur *testhelpers.MockUserRepository, h *testhelpers.MockPasswordHasher) {
				h.On("Compare", "hash", "guess").Return(errors.New("mismatch"))
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:        "same password",
			oldPassword: "Old!pass1",
			newPassword: "Old!pass1",
			setupMocks: func(ur *testhelpers.MockUserRepository, h *testhelpers.MockPasswordHasher) {
				h.On("Compare", "hash", "Old!pass1").Return(nil)
			},
			wantErr: ErrSamePassword,
		},
		{
			name:        "weak new password",
			oldPassword: "Old!pass1",
			newPassword: "weak",
			setupMocks: func(ur *testhelpers.MockUserRepository, h *testhelpers.MockPasswordHasher) {
				h.On("Compare", "hash", "Old!pass1").Return(nil)
				h.On("Compare", "hash", "weak").Return(errors.New("mismatch"))
			},
			wantField: "new_password",
		},
		{
			name:        "store failure",
			oldPassword: "Old!pass1",
			newPassword: "New!pass2",
			setupMocks: func(ur *testhelpers.MockUserRepository, h *testhelpers.MockPasswordHasher) {
				h.On("Compare", "hash", "Old!pass1").Return(nil)
				h.On("Compare", "hash", "New!pass2").Return(errors.New("mismatch"))
				h.On("Hash", "New!pass2").Return("new-hash", nil)
				ur.On("UpdatePassword", mock.Anything, int64(10), "new-hash").Return(errors.New("db closed"))
			},
			errContains: "failed to update password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userRepo := new(testhelpers.MockUserRepository)
			hasher := new(testhelpers.MockPasswordHasher)
			userRepo.On("GetByID", mock.Anything, int64(10)).
				Return(&entities.User{ID: 10, PasswordHash: "hash", Role: entities.RoleUser}, nil)
			tt.setupMocks(userRepo, hasher)

			svc := NewAccountService(userRepo, hasher, new(testhelpers.MockEventPublisher))
			err := svc.UpdatePassword(context.Background(), 10, tt.oldPassword, tt.newPassword)

			switch {
			case tt.wantField != "":
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.wantField)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errContains != "":
				assert.ErrorContains(t, err, tt.errContains)
			default:
				require.NoError(t, err)
			}

			userRepo.AssertExpectations(t)
			hasher.AssertExpectations(t)
		})
	}
}
