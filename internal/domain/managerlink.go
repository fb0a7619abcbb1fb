package domain

import "time"

// Manager is the manager side of a link: either a registered account or a
// bare email address pending registration. The zero value is invalid; use
// RegisteredManager or UnregisteredManager so that exactly one variant is
// ever set.
type Manager struct {
	user  *User
	email string
}

// RegisteredManager wraps an existing account as the manager side of a link.
func RegisteredManager(u *User) Manager {
	return Manager{user: u}
}

// UnregisteredManager records a manager known only by email address.
func UnregisteredManager(email string) Manager {
	return Manager{email: email}
}

// Registered reports whether the manager has an account.
func (m Manager) Registered() bool { return m.user != nil }

// User returns the manager's account, or nil for an unregistered manager.
func (m Manager) User() *User { return m.user }

// Email returns the manager's email for either variant.
func (m Manager) Email() string {
	if m.user != nil {
		return m.user.Email
	}
	return m.email
}

// Username returns the manager's username, or nil for an unregistered
// manager.
func (m Manager) Username() *string {
	if m.user != nil {
		return &m.user.Username
	}
	return nil
}

// LinkData is a validated "user reports to manager" pair that has not been
// persisted yet.
type LinkData struct {
	User    *User
	Manager Manager
}

// Validate enforces the self-management invariant: a user may not be their
// own manager, whether the manager side is their account or their email.
func (d LinkData) Validate() error {
	if d.User == nil {
		return ErrValidation("link user is required")
	}
	if m := d.Manager.User(); m != nil && m.ID == d.User.ID {
		return ErrValidation("user %s cannot be their own manager", d.User.Username)
	}
	if !d.Manager.Registered() && d.Manager.Email() == d.User.Email {
		return ErrValidation("user %s cannot be their own manager", d.User.Username)
	}
	return nil
}

// ManagerLink is a persisted "user reports to manager" record. Exactly one
// of ManagerUserID / UnregisteredManagerEmail is set.
type ManagerLink struct {
	ID                       int64
	UserID                   int64
	ManagerUserID            *int64
	UnregisteredManagerEmail *string
	CreatedAt                time.Time
}

// ManagerIdentity is the (email, username) projection of a manager.
// Username is nil when the manager has no registered account.
type ManagerIdentity struct {
	Email    string  `json:"email"`
	Username *string `json:"username"`
}

// ReportIdentity is the (email, username) projection of a managed user.
type ReportIdentity struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ReportItem is one entry in a create-reports request: the managed user,
// identified by username or email.
type ReportItem struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Identifier returns the item's user identifier, preferring email.
// Fails when neither field is supplied.
func (i ReportItem) Identifier() (string, error) {
	if i.Email != "" {
		return i.Email, nil
	}
	if i.Username != "" {
		return i.Username, nil
	}
	return "", ErrValidation("A username or email must be specified")
}

// CreateReportsRequest is the discriminated single-vs-bulk input shape of a
// create-reports request, resolved once at the HTTP boundary.
type CreateReportsRequest struct {
	Bulk  bool
	Items []ReportItem
}

// SingleReport builds a single-mode request.
func SingleReport(item ReportItem) CreateReportsRequest {
	return CreateReportsRequest{Items: []ReportItem{item}}
}

// BulkReports builds a bulk-mode request.
func BulkReports(items []ReportItem) CreateReportsRequest {
	return CreateReportsRequest{Bulk: true, Items: items}
}

// ItemError records the failure of one bulk item.
type ItemError struct {
	Detail string `json:"detail"`
}

// CreateReportsResult aggregates per-item outcomes of a create-reports
// request. Created preserves input order; Errors preserves the order in
// which items failed.
type CreateReportsResult struct {
	Bulk    bool
	Created []ReportIdentity
	Errors  []ItemError
}

// AddManagerRequest is the body of an add-manager request. The manager is
// always supplied as an email in this direction.
type AddManagerRequest struct {
	Email string `json:"email"`
}

// Validate checks that the request is well-formed.
func (r *AddManagerRequest) Validate() error {
	if r.Email == "" {
		return ErrValidation("A manager email must be specified")
	}
	return nil
}
