package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"surveystudio/internal/backend"
	"surveystudio/internal/cache"
	"surveystudio/internal/model"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrSessionEnded   = errors.New("session ended, sign in again")
	ErrInvalidProfile = errors.New("first name and email are required")
)

// AuthBackend is the part of the backend used for sign-in
type AuthBackend interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.BackendAuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.BackendAuthResponse, error)
	GoogleLogin(ctx context.Context, req model.GoogleLoginRequest) (*model.BackendAuthResponse, error)
	Me(ctx context.Context, token string) (*model.BackendUser, error)
	UpdateMe(ctx context.Context, token string, update model.ProfileUpdate) (*model.BackendUser, error)
}

// AuthService signs users in through the backend and keeps their session
type AuthService struct {
	backend   AuthBackend
	sessions  cache.SessionCache
	jwtSecret []byte
	ttl       time.Duration
	log       logrus.FieldLogger
}

// NewAuthService creates a new auth service
func NewAuthService(b AuthBackend, sessions cache.SessionCache, secret []byte, ttl time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		backend:   b,
		sessions:  sessions,
		jwtSecret: secret,
		ttl:       ttl,
		log:       log.WithField("component", "auth"),
	}
}

// Login validates credentials with the backend and opens a session
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

// Register creates an account and opens a session
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error) {
	resp, err := s.backend.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

// GoogleLogin signs in with a Google credential
func (s *AuthService) GoogleLogin(ctx context.Context, req model.GoogleLoginRequest) (*model.LoginResponse, error) {
	resp, err := s.backend.GoogleLogin(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

func (s *AuthService) startSession(ctx context.Context, resp *model.BackendAuthResponse) (*model.LoginResponse, error) {
	if resp.Token == "" {
		return nil, fmt.Errorf("backend returned no token")
	}
	role := resp.User.Role
	if role == "" {
		role = model.RoleUser
	}
	session := &model.Session{
		ID:        uuid.New().String(),
		Token:     resp.Token,
		UserID:    resp.User.UserID,
		Role:      role,
		UserName:  resp.User.FirstName,
		UserPhoto: resp.User.UserPhotoURL,
		IsBanned:  resp.User.IsBanned,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	now := time.Now()
	claims := &model.SessionClaims{
		SessionID: session.ID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"session": session.ID, "role": role}).Info("session started")
	return &model.LoginResponse{
		Token:     token,
		Role:      role,
		UserName:  session.UserName,
		UserPhoto: session.UserPhoto,
		IsBanned:  session.IsBanned,
	}, nil
}

// ValidateToken validates a session JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Session resolves a JWT to the stored session
func (s *AuthService) Session(ctx context.Context, tokenString string) (*model.Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidToken
	}
	return session, nil
}

// Refresh re-reads the profile from the backend so a ban takes effect
func (s *AuthService) Refresh(ctx context.Context, session *model.Session) (*model.Session, error) {
	user, err := s.backend.Me(ctx, session.Token)
	if err != nil {
		return nil, s.Upstream(ctx, session, err)
	}
	updated := *session
	updated.IsBanned = user.IsBanned
	if user.Role != "" {
		updated.Role = user.Role
	}
	if user.FirstName != "" {
		updated.UserName = user.FirstName
	}
	if user.UserPhotoURL != "" {
		updated.UserPhoto = user.UserPhotoURL
	}
	if err := s.sessions.Set(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Profile returns the full profile of the session user
func (s *AuthService) Profile(ctx context.Context, session *model.Session) (*model.BackendUser, error) {
	user, err := s.backend.Me(ctx, session.Token)
	if err != nil {
		return nil, s.Upstream(ctx, session, err)
	}
	return user, nil
}

// UpdateProfile saves profile changes and carries the new name and photo
// into the stored session
func (s *AuthService) UpdateProfile(ctx context.Context, session *model.Session, update model.ProfileUpdate) (*model.BackendUser, error) {
	update.FirstName = strings.TrimSpace(update.FirstName)
	update.LastName = strings.TrimSpace(update.LastName)
	update.Email = strings.TrimSpace(update.Email)
	if update.FirstName == "" || update.Email == "" {
		return nil, ErrInvalidProfile
	}

	user, err := s.backend.UpdateMe(ctx, session.Token, update)
	if err != nil {
		return nil, s.Upstream(ctx, session, err)
	}
	if user.FirstName == "" {
		user.FirstName = update.FirstName
	}
	if user.UserPhotoURL == "" {
		user.UserPhotoURL = update.UserPhotoURL
	}

	updated := *session
	updated.UserName = user.FirstName
	updated.UserPhoto = user.UserPhotoURL
	if err := s.sessions.Set(ctx, &updated); err != nil {
		s.log.WithError(err).WithField("session", session.ID).Warn("failed to update session profile")
	}
	return user, nil
}

// Logout ends a session
func (s *AuthService) Logout(ctx context.Context, session *model.Session) error {
	s.log.WithField("session", session.ID).Info("session ended")
	return s.sessions.Delete(ctx, session.ID)
}

// Upstream inspects a backend error. When the backend no longer accepts
// the stored token the session is dropped and ErrSessionEnded returned.
func (s *AuthService) Upstream(ctx context.Context, session *model.Session, err error) error {
	if err == nil || !backend.IsAuthFailure(err) {
		return err
	}
	if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil {
		s.log.WithError(delErr).Warn("failed to drop session")
	}
	s.log.WithField("session", session.ID).Info("backend rejected token, session dropped")
	return fmt.Errorf("%w: %v", ErrSessionEnded, err)
}
