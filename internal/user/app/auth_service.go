package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"

	"github.com/vbs-0/bomber/internal/user/domain"
	"github.com/vbs-0/bomber/internal/user/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("your account has been suspended")
	ErrUsernameExists     = errors.New("username already taken")
	ErrPhoneExists        = errors.New("phone number already registered")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
)

const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// HashPassword derives a scrypt key from the password with a random salt.
// Stored form is hex(derivedKey).hex(salt).
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("deriving key: %w", err)
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// CheckPasswordHash re-derives with the stored salt and compares in
// constant time.
func CheckPasswordHash(password, stored string) bool {
	parts := strings.SplitN(stored, ".", 2)
	if len(parts) != 2 {
		return false
	}
	storedKey, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(storedKey))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, storedKey) == 1
}

// SessionConfig configures session token minting.
type SessionConfig struct {
	Secret   string
	TTLHours int
}

// NewAccount carries the fields needed to create a user record.
type NewAccount struct {
	Username string
	Password string
	FullName string
	Phone    string
	IsAdmin  bool
}

// AuthService owns accounts, credentials and session tokens.
type AuthService struct {
	userRepo       repository.UserRepository
	config         SessionConfig
	initialCredits int
	logger         *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, config SessionConfig, initialCredits int, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		config:         config,
		initialCredits: initialCredits,
		logger:         logger.With("service", "auth"),
	}
}

// CheckAvailability rejects usernames (case-insensitively) and phones that
// are already registered.
func (s *AuthService) CheckAvailability(ctx context.Context, username, phone string) error {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return ErrUsernameExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Error checking username existence", "error", err, "username", username)
		return err
	}

	if _, err := s.userRepo.GetByPhone(ctx, phone); err == nil {
		return ErrPhoneExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Error checking phone existence", "error", err)
		return err
	}
	return nil
}

// CreateAccount hashes the password and persists the user with the initial
// credit balance. Callers must have confirmed phone ownership first.
func (s *AuthService) CreateAccount(ctx context.Context, acct NewAccount) (*domain.User, error) {
	if err := s.CheckAvailability(ctx, acct.Username, acct.Phone); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(acct.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", "error", err, "username", acct.Username)
		return nil, errors.New("failed to process registration")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:                uuid.New(),
		Username:          acct.Username,
		HashedPassword:    hashed,
		FullName:          acct.FullName,
		Phone:             acct.Phone,
		MessagesRemaining: s.initialCredits,
		IsAdmin:           acct.IsAdmin,
		IsActive:          true,
		LastActivity:      now,
		CreatedAt:         now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "Account created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate verifies credentials. Bad username and bad password are not
// distinguished; disabled accounts get their own error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Error fetching user for login", "error", err, "username", username)
		return nil, err
	}

	if !CheckPasswordHash(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.userRepo.TouchLastActivity(ctx, user.ID); err != nil {
		s.logger.WarnContext(ctx, "Failed to update last activity", "error", err, "user_id", user.ID)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPasswordHash(current, user.HashedPassword) {
		return ErrWrongPassword
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing new password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, hashed)
}

type sessionClaims struct {
	IsAdmin bool `json:"adm"`
	jwt.RegisteredClaims
}

// CreateSession mints a signed session token for the user.
func (s *AuthService) CreateSession(user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.config.TTLHours) * time.Hour)
	claims := sessionClaims{
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateSession parses the session token and returns the user id it
// carries.
func (s *AuthService) ValidateSession(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrSessionInvalid
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok {
		return uuid.Nil, ErrSessionInvalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrSessionInvalid
	}
	return userID, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
