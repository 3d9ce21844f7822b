package auth

import (
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/internal/user"
)

// UserRepository resolves local identities. Authentication never creates
// users; provisioning is the sync engine's job.
type UserRepository interface {
	GetCredentials(username string) (*user.User, string, error)
	GetByID(id int64) (*user.User, error)
	TouchLastLogin(id int64) error
}

// DirectoryVerifier checks a login and password against the directory by
// binding with them.
type DirectoryVerifier interface {
	Verify(login, password string) error
}

type Service struct {
	userRepo       UserRepository
	verifier       DirectoryVerifier
	tokenGenerator TokenGenerator
	cache          *credcache.Cache
	domain         string
	logger         *slog.Logger
}

func NewService(
	userRepo UserRepository,
	verifier DirectoryVerifier,
	tokenGen TokenGenerator,
	cache *credcache.Cache,
	domain string,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepo:       userRepo,
		verifier:       verifier,
		tokenGenerator: tokenGen,
		cache:          cache,
		domain:         domain,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns tokens. Accounts with a
// local password hash (the bootstrap superuser) are checked against it
// first; everyone else is verified by binding against the directory, and
// the verified credentials are cached for later directory operations.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	username := directory.NormalizeLogin(dto.Username, s.domain)

	u, storedHash, err := s.userRepo.GetCredentials(username)
	if err != nil && err != user.ErrNotFound {
		return AuthTokens{}, err
	}

	if u != nil && storedHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)) == nil {
			return s.issueTokens(u)
		}
	}

	if err := s.verifier.Verify(username, dto.Password); err != nil {
		switch {
		case errors.Is(err, directory.ErrInvalidCredentials):
			return AuthTokens{}, ErrInvalidCredentials
		default:
			s.logger.Error("Authenticate: directory verification failed", "error", err, "username", username)
			return AuthTokens{}, ErrDirectoryUnavailable
		}
	}

	if u == nil {
		s.logger.Warn("Authenticate: directory-verified account has no local user", "username", username)
		return AuthTokens{}, ErrUserNotProvisioned
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		return AuthTokens{}, err
	}

	// cached only after the directory accepted them
	s.cache.Store(u.ID, credcache.Credentials{Login: username, Password: dto.Password})
	return tokens, nil
}

func (s *Service) issueTokens(u *user.User) (AuthTokens, error) {
	if !u.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(u.ID, u.Username)
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u.ID, u.Username)
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.userRepo.TouchLastLogin(u.ID); err != nil {
		s.logger.Warn("Authenticate: failed to record last login", "error", err, "user_id", u.ID)
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshTokens validates a refresh token and returns a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !u.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(u.ID, u.Username)
	if err != nil {
		return AuthTokens{}, err
	}
	newRefreshToken, err := s.tokenGenerator.GenerateRefreshToken(u.ID, u.Username)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

func (s *Service) GetUserByID(id int64) (*user.User, error) {
	return s.userRepo.GetByID(id)
}

// Logout drops the cached directory credentials for the user.
func (s *Service) Logout(userID int64) {
	s.cache.Delete(userID)
}

// HashPassword creates a bcrypt hash, used when seeding the bootstrap
// superuser and when changing directory passwords is not an option.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
