package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"manager-links/internal/domain"
)

// ManagerLinkRepo persists links on the write pool and serves the list
// queries from the read pool.
type ManagerLinkRepo struct {
	db   *sql.DB
	read *sql.DB
}

func NewManagerLinkRepo(writeDB, readDB *sql.DB) *ManagerLinkRepo {
	return &ManagerLinkRepo{db: writeDB, read: readDB}
}

// linkFilter composes WHERE clauses over the joined link view:
// manager_links l JOIN users u (managed user) LEFT JOIN users m (manager).
// An empty identifier adds no clause, so both filters are no-ops by default.
type linkFilter struct {
	where []string
	args  []any
}

func (f *linkFilter) byManager(identifier string) {
	if identifier == "" {
		return
	}
	if domain.IsEmail(identifier) {
		f.where = append(f.where, `(m.email = ? OR l.unregistered_manager_email = ?)`)
		f.args = append(f.args, identifier, identifier)
		return
	}
	// Unregistered managers have no username, so they never match here.
	f.where = append(f.where, `m.username = ?`)
	f.args = append(f.args, identifier)
}

func (f *linkFilter) byUser(identifier string) {
	if identifier == "" {
		return
	}
	if domain.IsEmail(identifier) {
		f.where = append(f.where, `u.email = ?`)
		f.args = append(f.args, identifier)
		return
	}
	f.where = append(f.where, `u.username = ?`)
	f.args = append(f.args, identifier)
}

func (f *linkFilter) clause() string {
	if len(f.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.where, " AND ")
}

const linkJoin = `
FROM manager_links l
JOIN users u ON u.id = l.user_id
LEFT JOIN users m ON m.id = l.manager_user_id`

func (r *ManagerLinkRepo) CreateBatch(ctx context.Context, links []domain.LinkData) ([]domain.ReportIdentity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	created := make([]domain.ReportIdentity, 0, len(links))
	for _, link := range links {
		if link.Manager.Registered() {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO manager_links (user_id, manager_user_id) VALUES (?, ?)
				 ON CONFLICT (user_id, manager_user_id) WHERE manager_user_id IS NOT NULL DO NOTHING`,
				link.User.ID, link.Manager.User().ID)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO manager_links (user_id, unregistered_manager_email) VALUES (?, ?)
				 ON CONFLICT (user_id, unregistered_manager_email) WHERE unregistered_manager_email IS NOT NULL DO NOTHING`,
				link.User.ID, link.Manager.Email())
		}
		if err != nil {
			return nil, mapDBError(err)
		}
		created = append(created, domain.ReportIdentity{
			Email:    link.User.Email,
			Username: link.User.Username,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, mapDBError(err)
	}
	return created, nil
}

func (r *ManagerLinkRepo) ListDistinctManagers(ctx context.Context, page domain.PageRequest) ([]domain.ManagerIdentity, int64, error) {
	const distinct = `SELECT DISTINCT
		COALESCE(m.email, l.unregistered_manager_email) AS email, m.username` + linkJoin

	var total int64
	if err := r.read.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (`+distinct+`)`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.read.QueryContext(ctx,
		distinct+` ORDER BY email LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	managers, err := scanManagers(rows)
	return managers, total, err
}

func (r *ManagerLinkRepo) ListReports(ctx context.Context, managerIdentifier string, page domain.PageRequest) ([]domain.ReportIdentity, int64, error) {
	var f linkFilter
	f.byManager(managerIdentifier)

	var total int64
	if err := r.read.QueryRowContext(ctx,
		`SELECT COUNT(*)`+linkJoin+f.clause(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := append(f.args, page.Limit(), page.Offset())
	rows, err := r.read.QueryContext(ctx,
		`SELECT u.email, u.username`+linkJoin+f.clause()+` ORDER BY l.id LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []domain.ReportIdentity
	for rows.Next() {
		var rep domain.ReportIdentity
		if err := rows.Scan(&rep.Email, &rep.Username); err != nil {
			return nil, 0, err
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}

func (r *ManagerLinkRepo) ListManagers(ctx context.Context, userIdentifier string, page domain.PageRequest) ([]domain.ManagerIdentity, int64, error) {
	var f linkFilter
	f.byUser(userIdentifier)

	var total int64
	if err := r.read.QueryRowContext(ctx,
		`SELECT COUNT(*)`+linkJoin+f.clause(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := append(f.args, page.Limit(), page.Offset())
	rows, err := r.read.QueryContext(ctx,
		`SELECT COALESCE(m.email, l.unregistered_manager_email) AS email, m.username`+
			linkJoin+f.clause()+` ORDER BY email, l.id LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	managers, err := scanManagers(rows)
	return managers, total, err
}

// DeleteLinks removes every link matching both filters in one statement so
// concurrent readers never observe a partially deleted set.
func (r *ManagerLinkRepo) DeleteLinks(ctx context.Context, managerIdentifier, userIdentifier string) (int64, error) {
	var f linkFilter
	f.byManager(managerIdentifier)
	f.byUser(userIdentifier)

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM manager_links WHERE id IN (SELECT l.id`+linkJoin+f.clause()+`)`,
		f.args...)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}

// UpgradeEmailLinks rewrites links that reference u's email as an
// unregistered manager so they reference the account instead. Links whose
// upgrade would duplicate an existing (user, manager_user) row are removed
// first, keeping both uniqueness constraints intact.
func (r *ManagerLinkRepo) UpgradeEmailLinks(ctx context.Context, u *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM manager_links
		 WHERE unregistered_manager_email = ?
		   AND (user_id = ?
		        OR EXISTS (SELECT 1 FROM manager_links dup
		                   WHERE dup.user_id = manager_links.user_id
		                     AND dup.manager_user_id = ?))`,
		u.Email, u.ID, u.ID)
	if err != nil {
		return fmt.Errorf("drop colliding links: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE manager_links
		 SET manager_user_id = ?, unregistered_manager_email = NULL
		 WHERE unregistered_manager_email = ?`,
		u.ID, u.Email)
	if err != nil {
		return fmt.Errorf("upgrade links: %w", err)
	}

	return tx.Commit()
}

func scanManagers(rows *sql.Rows) ([]domain.ManagerIdentity, error) {
	var managers []domain.ManagerIdentity
	for rows.Next() {
		var m domain.ManagerIdentity
		if err := rows.Scan(&m.Email, &m.Username); err != nil {
			return nil, err
		}
		managers = append(managers, m)
	}
	return managers, rows.Err()
}
