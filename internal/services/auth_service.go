package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/repository"
	"github.com/yukikurage/taskpad/internal/utils"
)

var (
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService is the credential store: it registers accounts and checks passwords.
type AuthService struct {
	userRepo repository.UserRepository
	clock    utils.Clock
	cost     int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, clock utils.Clock) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		clock:    clock,
		cost:     bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// RegisterInput represents the information needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new account and returns it without the password hash.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.Account, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	now := s.clock.Now()
	account := &models.Account{
		ID:           utils.NewAccountID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, account); err != nil {
		if dup := s.duplicateOf(ctx, username, email); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	public := account.Public()
	return &public, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the account without the password hash.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.Account, error) {
	account, err := s.findAccount(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidPassword
	}

	public := account.Public()
	return &public, nil
}

// ProfilePatch lists the profile fields an account may change.
type ProfilePatch struct {
	Email *string
}

// UpdateProfile applies patch to the account of username.
func (s *AuthService) UpdateProfile(ctx context.Context, username string, patch ProfilePatch) (*models.Account, error) {
	account, err := s.findAccount(ctx, username)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email != account.Email {
			if other, err := s.userRepo.FindByEmail(ctx, email); err == nil && other.ID != account.ID {
				return nil, ErrDuplicateEmail
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			account.Email = email
		}
	}

	account.UpdatedAt = s.clock.Now()
	if err := s.userRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	public := account.Public()
	return &public, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	account, err := s.findAccount(ctx, username)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return ErrFailedToHashPassword
	}
	account.PasswordHash = string(hashedPassword)
	account.UpdatedAt = s.clock.Now()

	if err := s.userRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// duplicateOf reports which unique field a failed insert collided with. A
// concurrent registration can claim the name between the lookup and the insert.
func (s *AuthService) duplicateOf(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return ErrDuplicateUsername
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	}
	return nil
}

func (s *AuthService) findAccount(ctx context.Context, username string) (*models.Account, error) {
	account, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}
