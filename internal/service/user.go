// Package service implements the business operations of the manager-links
// service on top of the domain repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"manager-links/internal/domain"
)

// UserService syncs registered accounts from the identity subsystem and
// resolves username-or-email identifiers to accounts.
type UserService struct {
	users domain.UserRepository
	links domain.ManagerLinkRepository
}

func NewUserService(users domain.UserRepository, links domain.ManagerLinkRepository) *UserService {
	return &UserService{users: users, links: links}
}

// Register records a newly registered account and upgrades any links that
// referenced the account's email as an unregistered manager.
func (s *UserService) Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.links.UpgradeEmailLinks(ctx, u); err != nil {
		return nil, fmt.Errorf("reconcile links for %s: %w", u.Username, err)
	}
	return u, nil
}

// Resolve looks up an account by identifier: email match when the
// identifier contains '@', exact username match otherwise, never both.
func (s *UserService) Resolve(ctx context.Context, identifier string) (*domain.User, error) {
	return resolveUser(ctx, s.users, identifier)
}

func resolveUser(ctx context.Context, users domain.UserRepository, identifier string) (*domain.User, error) {
	var (
		u   *domain.User
		err error
	)
	if domain.IsEmail(identifier) {
		u, err = users.GetByEmail(ctx, identifier)
	} else {
		u, err = users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, domain.ErrNotFound("No user with identifier: %s", identifier)
		}
		return nil, err
	}
	return u, nil
}
