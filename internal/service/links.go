package service

import (
	"context"
	"errors"

	"manager-links/internal/domain"
)

// LinkService builds, persists, lists, and deletes manager links.
type LinkService struct {
	users domain.UserRepository
	links domain.ManagerLinkRepository
}

func NewLinkService(users domain.UserRepository, links domain.ManagerLinkRepository) *LinkService {
	return &LinkService{users: users, links: links}
}

// resolveManager resolves the manager side of a link. An email that matches
// no account is a valid unregistered manager, not an error. A username must
// resolve to an account: unregistered managers are tracked only by email.
func (s *LinkService) resolveManager(ctx context.Context, identifier string) (domain.Manager, error) {
	if domain.IsEmail(identifier) {
		u, err := s.users.GetByEmail(ctx, identifier)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				return domain.UnregisteredManager(identifier), nil
			}
			return domain.Manager{}, err
		}
		return domain.RegisteredManager(u), nil
	}

	u, err := s.users.GetByUsername(ctx, identifier)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Manager{}, domain.ErrNotFound("No user with identifier: %s", identifier)
		}
		return domain.Manager{}, err
	}
	return domain.RegisteredManager(u), nil
}

// buildReportLink resolves one report item under the given manager into an
// unpersisted link.
func (s *LinkService) buildReportLink(ctx context.Context, manager domain.Manager, item domain.ReportItem) (domain.LinkData, error) {
	identifier, err := item.Identifier()
	if err != nil {
		return domain.LinkData{}, err
	}
	u, err := resolveUser(ctx, s.users, identifier)
	if err != nil {
		return domain.LinkData{}, err
	}
	return domain.LinkData{User: u, Manager: manager}, nil
}

// CreateReports adds one or many reports under a manager.
//
// In bulk mode a report whose identifier resolves to no account is recorded
// in the error list and the batch continues; any other failure (missing
// identifier, self-management) aborts the whole request. In single mode
// every failure aborts. All successfully built links are persisted in one
// batch.
func (s *LinkService) CreateReports(ctx context.Context, managerIdentifier string, req domain.CreateReportsRequest) (*domain.CreateReportsResult, error) {
	manager, err := s.resolveManager(ctx, managerIdentifier)
	if err != nil {
		return nil, err
	}

	result := &domain.CreateReportsResult{Bulk: req.Bulk}
	built := make([]domain.LinkData, 0, len(req.Items))
	for _, item := range req.Items {
		link, err := s.buildReportLink(ctx, manager, item)
		if err != nil {
			var notFound *domain.NotFoundError
			if req.Bulk && errors.As(err, &notFound) {
				result.Errors = append(result.Errors, domain.ItemError{Detail: notFound.Message})
				continue
			}
			return nil, err
		}
		if err := link.Validate(); err != nil {
			return nil, err
		}
		built = append(built, link)
	}

	created, err := s.links.CreateBatch(ctx, built)
	if err != nil {
		return nil, err
	}
	result.Created = created
	return result, nil
}

// AddManager links a manager, supplied as an email, to the user matching
// the identifier. The email is stored unregistered when it matches no
// account.
func (s *LinkService) AddManager(ctx context.Context, userIdentifier string, req domain.AddManagerRequest) (*domain.ManagerIdentity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := resolveUser(ctx, s.users, userIdentifier)
	if err != nil {
		return nil, err
	}

	manager := domain.UnregisteredManager(req.Email)
	if managerUser, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		manager = domain.RegisteredManager(managerUser)
	} else {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	link := domain.LinkData{User: u, Manager: manager}
	if err := link.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.links.CreateBatch(ctx, []domain.LinkData{link}); err != nil {
		return nil, err
	}

	return &domain.ManagerIdentity{Email: manager.Email(), Username: manager.Username()}, nil
}

// ListAllManagers returns the distinct managers across all links.
func (s *LinkService) ListAllManagers(ctx context.Context, page domain.PageRequest) ([]domain.ManagerIdentity, int64, error) {
	return s.links.ListDistinctManagers(ctx, page)
}

// ListReports returns the users reporting to the matching manager.
func (s *LinkService) ListReports(ctx context.Context, managerIdentifier string, page domain.PageRequest) ([]domain.ReportIdentity, int64, error) {
	return s.links.ListReports(ctx, managerIdentifier, page)
}

// ListManagers returns the managers of the matching user.
func (s *LinkService) ListManagers(ctx context.Context, userIdentifier string, page domain.PageRequest) ([]domain.ManagerIdentity, int64, error) {
	return s.links.ListManagers(ctx, userIdentifier, page)
}

// DeleteReports removes all of a manager's links, optionally narrowed to
// one report. Removing nothing is a valid outcome.
func (s *LinkService) DeleteReports(ctx context.Context, managerIdentifier, userIdentifier string) (int64, error) {
	return s.links.DeleteLinks(ctx, managerIdentifier, userIdentifier)
}

// DeleteManagers removes all of a user's links, optionally narrowed to one
// manager.
func (s *LinkService) DeleteManagers(ctx context.Context, userIdentifier, managerIdentifier string) (int64, error) {
	return s.links.DeleteLinks(ctx, managerIdentifier, userIdentifier)
}
