// Package identity manages user accounts and bearer-token sessions.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/logger"
	"go-dental-review/internal/repository"
	"go-dental-review/pkg/models"
)

// Service authenticates users and resolves session tokens. Sessions
// live in memory; restarting the process invalidates them.
type Service struct {
	users *repository.Collection[models.User]

	mu       sync.RWMutex
	sessions map[string]string // token -> user id

	now   func() time.Time
	newID func() string
}

// New creates an identity service over the users collection.
func New(users *repository.Collection[models.User]) *Service {
	return &Service{
		users:    users,
		sessions: make(map[string]string),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Session is a successful login: the account plus its bearer token.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// RegisterRequest carries a new patient account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Register creates a patient account. Email addresses are unique,
// case-insensitively.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return models.User{}, apperrors.NewInvalidInputError("name, email and password are required", nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		return models.User{}, apperrors.NewConflictError(fmt.Sprintf("email %s is already registered", email), nil)
	}

	user := models.User{
		ID:           s.newID(),
		Type:         models.UserPatient,
		Name:         req.Name,
		Email:        email,
		PasswordHash: hashPassword(req.Password),
		Phone:        req.Phone,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return models.User{}, apperrors.NewInternalError("failed to store user", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   email,
	}).Info("User registered")
	return user, nil
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if user == nil || user.PasswordHash != hashPassword(password) {
		return Session{}, apperrors.NewUnauthorizedError("invalid email or password", nil)
	}

	loginAt := s.now().UTC()
	err = s.users.Update(ctx, user.ID, func(u *models.User) error {
		u.LastLoginAt = loginAt
		return nil
	})
	if err != nil {
		return Session{}, apperrors.NewInternalError("failed to record login", err)
	}
	user.LastLoginAt = loginAt

	token := s.newID()
	s.mu.Lock()
	s.sessions[token] = user.ID
	s.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"type":    user.Type,
	}).Info("User logged in")
	return Session{User: *user, Token: token}, nil
}

// Logout closes the session. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Resolve maps a bearer token to its account.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	s.mu.RLock()
	userID, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewUnauthorizedError("invalid or expired session", nil)
	}

	user, err := s.users.Find(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewUnauthorizedError("session user no longer exists", err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read user", err)
	}
	return user, nil
}

// ProfileUpdate carries the user-editable profile fields. Nil fields
// stay unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (models.User, error) {
	var updated models.User
	err := s.users.Update(ctx, userID, func(u *models.User) error {
		if upd.Name != nil {
			if *upd.Name == "" {
				return apperrors.NewInvalidInputError("name cannot be empty", nil)
			}
			u.Name = *upd.Name
		}
		if upd.Phone != nil {
			u.Phone = *upd.Phone
		}
		updated = *u
		return nil
	})
	if err == repository.ErrNotFound {
		return models.User{}, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", userID), err)
	}
	if err != nil {
		if _, ok := err.(*apperrors.AppError); ok {
			return models.User{}, err
		}
		return models.User{}, apperrors.NewInternalError("failed to update user", err)
	}
	return updated, nil
}

// Doctors returns every doctor account, for the booking views.
func (s *Service) Doctors(ctx context.Context) ([]models.User, error) {
	doctors, err := s.users.Filter(ctx, func(u *models.User) bool {
		return u.Type == models.UserDoctor
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	return doctors, nil
}

// Seed inserts the given accounts if their email is not yet
// registered. Used at startup to provision demo doctors and patients.
func (s *Service) Seed(ctx context.Context, accounts []SeedAccount) error {
	for _, acc := range accounts {
		email := strings.ToLower(acc.Email)
		existing, err := s.findByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		user := models.User{
			ID:           acc.ID,
			Type:         acc.Type,
			Name:         acc.Name,
			Email:        email,
			PasswordHash: hashPassword(acc.Password),
			Specialty:    acc.Specialty,
			Hospital:     acc.Hospital,
			RegisteredAt: s.now().UTC(),
		}
		if user.ID == "" {
			user.ID = s.newID()
		}
		if err := s.users.Insert(ctx, user); err != nil {
			return apperrors.NewInternalError("failed to seed user", err)
		}
	}
	return nil
}

// SeedAccount is one provisioned account.
type SeedAccount struct {
	ID        string
	Type      models.UserType
	Name      string
	Email     string
	Password  string
	Specialty string
	Hospital  string
}

// DefaultAccounts are the demo accounts provisioned on an empty store.
func DefaultAccounts() []SeedAccount {
	return []SeedAccount{
		{ID: "doctor-zhang", Type: models.UserDoctor, Name: "Dr. Zhang Wei", Email: "zhang@dental.example", Password: "doctor123", Specialty: "Periodontics", Hospital: "Downtown Dental Clinic"},
		{ID: "doctor-li", Type: models.UserDoctor, Name: "Dr. Li Na", Email: "li@dental.example", Password: "doctor123", Specialty: "General Dentistry", Hospital: "Riverside Dental Center"},
		{ID: "patient-demo", Type: models.UserPatient, Name: "Demo Patient", Email: "patient@dental.example", Password: "patient123"},
	}
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.User, error) {
	matches, err := s.users.Filter(ctx, func(u *models.User) bool {
		return u.Email == email
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query users", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
