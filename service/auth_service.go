package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"leadcrm-backend/auth"
	"leadcrm-backend/models"
	"leadcrm-backend/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DevLogin is a fixed credential pair accepted without reading the Users
// sheet. It stays disabled unless explicitly configured.
type DevLogin struct {
	Enabled  bool
	Username string
	Password string
}

// AuthService verifies credentials and issues sessions
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *auth.TokenManager
	devLogin DevLogin
	log      *zap.Logger
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// AuthWithUserRepository sets the user repository
func AuthWithUserRepository(repo *repository.UserRepository) AuthServiceOption {
	return func(s *AuthService) {
		s.userRepo = repo
	}
}

// AuthWithTokenManager sets the session token manager
func AuthWithTokenManager(tm *auth.TokenManager) AuthServiceOption {
	return func(s *AuthService) {
		s.tokens = tm
	}
}

// AuthWithDevLogin enables the development login
func AuthWithDevLogin(d DevLogin) AuthServiceOption {
	return func(s *AuthService) {
		s.devLogin = d
	}
}

// AuthWithLogger sets the logger
func AuthWithLogger(log *zap.Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.log = log
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginRequest carries an email or username and a password
type LoginRequest struct {
	Identifier string
	Password   string
}

// LoginResult is a verified user with a signed session token
type LoginResult struct {
	User  auth.SessionUser
	Token string
}

// Login checks the account status before comparing the password, so an
// inactive account reports ErrAccountInactive even with a wrong password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if s.userRepo == nil || s.tokens == nil {
		return nil, errors.New("auth service dependencies not set")
	}

	if user, ok := s.matchDevLogin(req); ok {
		s.log.Warn("Development login used", zap.String("username", s.devLogin.Username))
		return s.issue(user)
	}

	rec, err := s.userRepo.FindByLogin(ctx, req.Identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, upstream("find user", err)
	}

	u := rec.User
	if !u.IsActive() {
		return nil, ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(auth.SessionUser{
		UserID: u.UserID,
		Name:   u.Name,
		Role:   u.Role,
		Email:  u.Email,
	})
}

func (s *AuthService) issue(user auth.SessionUser) (*LoginResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) matchDevLogin(req LoginRequest) (auth.SessionUser, bool) {
	d := s.devLogin
	if !d.Enabled || d.Username == "" || d.Password == "" {
		return auth.SessionUser{}, false
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(req.Identifier))), []byte(strings.ToLower(d.Username))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(d.Password)) == 1
	if !userOK || !passOK {
		return auth.SessionUser{}, false
	}
	return auth.SessionUser{
		UserID: "dev-" + strings.ToLower(d.Username),
		Name:   "Development Admin",
		Role:   models.RoleAdmin,
	}, true
}

// UsernameExists reports whether a login already uses username
func (s *AuthService) UsernameExists(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, invalid("username", "Username required")
	}
	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return false, upstream("check username", err)
	}
	return exists, nil
}
