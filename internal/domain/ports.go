package domain

import "context"

// UserRepository is the read-model store for registered accounts.
type UserRepository interface {
	Create(ctx context.Context, req RegisterUserRequest) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// ManagerLinkRepository owns persisted ManagerLink records. List and delete
// operations take identifier filters with username-or-email semantics: an
// identifier containing '@' matches on email, anything else matches on
// username, and an empty identifier matches everything.
type ManagerLinkRepository interface {
	// CreateBatch persists all links in one transaction. Links that already
	// exist are skipped, not errors. Returns the managed-user projection of
	// every link in input order.
	CreateBatch(ctx context.Context, links []LinkData) ([]ReportIdentity, error)

	// ListDistinctManagers returns the distinct (email, username) manager
	// projection across all links, ordered by email.
	ListDistinctManagers(ctx context.Context, page PageRequest) ([]ManagerIdentity, int64, error)

	// ListReports returns the managed users linked under the manager
	// matching the identifier.
	ListReports(ctx context.Context, managerIdentifier string, page PageRequest) ([]ReportIdentity, int64, error)

	// ListManagers returns the managers of the user matching the identifier.
	ListManagers(ctx context.Context, userIdentifier string, page PageRequest) ([]ManagerIdentity, int64, error)

	// DeleteLinks removes every link matching both filters in one statement
	// and returns the number of rows removed. Zero is not an error.
	DeleteLinks(ctx context.Context, managerIdentifier, userIdentifier string) (int64, error)

	// UpgradeEmailLinks rewrites links referencing the user's email as an
	// unregistered manager so they reference the account instead. Links
	// whose upgrade would duplicate an existing (user, manager) pair are
	// removed.
	UpgradeEmailLinks(ctx context.Context, u *User) error
}
