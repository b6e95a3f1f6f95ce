package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"surveystudio/internal/model"
)

// AdminBackend is the admin part of the backend
type AdminBackend interface {
	ListUsers(ctx context.Context, token string) ([]model.AdminUser, error)
	BanUser(ctx context.Context, token string, userID int) error
}

// AdminService proxies account administration
type AdminService struct {
	backend AdminBackend
	auth    upstream
	log     logrus.FieldLogger
}

// NewAdminService creates a new admin service
func NewAdminService(b AdminBackend, auth upstream, log logrus.FieldLogger) *AdminService {
	return &AdminService{
		backend: b,
		auth:    auth,
		log:     log.WithField("component", "admin"),
	}
}

// ListUsers returns every account
func (s *AdminService) ListUsers(ctx context.Context, session *model.Session) ([]model.AdminUser, error) {
	users, err := s.backend.ListUsers(ctx, session.Token)
	if err != nil {
		return nil, s.auth.Upstream(ctx, session, err)
	}
	return users, nil
}

// Ban bans an account
func (s *AdminService) Ban(ctx context.Context, session *model.Session, userID int) error {
	if err := s.backend.BanUser(ctx, session.Token, userID); err != nil {
		return s.auth.Upstream(ctx, session, err)
	}
	s.log.WithFields(logrus.Fields{"admin": session.UserID, "user": userID}).Info("user banned")
	return nil
}
