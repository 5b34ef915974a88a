package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"regatta/internal/models"
	"regatta/internal/repositories"
)

// PasswordHasher is the one-way hashing contract AuthService depends on.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher hashes passwords with bcrypt at the default cost.
type BcryptHasher struct{}

// Hash returns the bcrypt hash of the plaintext.
func (BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash.
func (BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// AuthService handles business logic for accounts and authentication.
type AuthService struct {
	userRepo   repositories.UserRepository
	hasher     PasswordHasher
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// Register creates a new active account. Uniqueness of email and username is
// checked before the password is hashed so a doomed registration never pays
// for the slow hash.
func (s *AuthService) Register(email, username, password string) (*models.User, error) {
	taken, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &models.ConflictError{Field: "email", Value: email}
	}

	taken, err = s.userRepo.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &models.ConflictError{Field: "username", Value: username}
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          email,
		Username:       username,
		HashedPassword: hashed,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Authenticate looks up the account by username and verifies the password.
// An absent user, an inactive user, and a wrong password are all reported as
// the same (nil, nil) result so callers cannot tell which check failed.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CanLogin() {
		return nil, nil
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, nil
	}
	return user, nil
}

// GetByID returns the user, or (nil, nil) when absent.
func (s *AuthService) GetByID(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateEmail changes the account email, enforcing uniqueness.
func (s *AuthService) UpdateEmail(userID, newEmail string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrNotFound
	}

	if newEmail != user.Email {
		taken, err := s.userRepo.ExistsByEmail(newEmail)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &models.ConflictError{Field: "email", Value: newEmail}
		}
	}

	if err := user.UpdateEmail(newEmail); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate disables the account.
func (s *AuthService) Deactivate(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrNotFound
	}

	user.Deactivate()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GenerateToken issues a signed JWT carrying the user id as subject.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if
// valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return &models.WeakPasswordError{Reason: "must be at least 6 characters long"}
	}
	if len(password) > 128 {
		return &models.WeakPasswordError{Reason: "must be at most 128 characters long"}
	}
	allDigits, allLetters := true, true
	for _, r := range password {
		if r < '0' || r > '9' {
			allDigits = false
		}
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			allLetters = false
		}
	}
	if allDigits {
		return &models.WeakPasswordError{Reason: "cannot be all numbers"}
	}
	if allLetters {
		return &models.WeakPasswordError{Reason: "must contain at least one number"}
	}
	return nil
}
