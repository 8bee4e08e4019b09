package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/internal/directory/store"

	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

type accountsRepo struct {
	q querier
}

const accountColumns = `id, identifier, secret_hash, real_name, phone, role, college, status, failed_attempts, created_at, updated_at`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByIdentifier(ctx context.Context, identifier string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE identifier = ?`, identifier)
	return scanAccount(row)
}

func (r *accountsRepo) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE identifier = ?`, identifier).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Identifier, a.SecretHash, a.RealName, a.Phone,
		string(a.Role), a.College, string(a.Status), a.FailedAttempts,
		a.CreatedAt, now,
	)
	return mapUniqueViolation(err)
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts
		    SET real_name = ?, phone = ?, role = ?, college = ?, status = ?, updated_at = ?
		  WHERE id = ?`,
		a.RealName, a.Phone, string(a.Role), a.College, string(a.Status),
		time.Now().UTC(), a.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) UpdateLockout(ctx context.Context, id string, failedAttempts int, status domain.Status) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET failed_attempts = ?, status = ?, updated_at = ? WHERE id = ?`,
		failedAttempts, string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) UpdateSecretHash(ctx context.Context, id string, newHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET secret_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) ListAccounts(ctx context.Context, f store.AccountFilter, p store.Page) ([]domain.Account, int64, error) {
	where, args := buildFilter(f)

	var total int64
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts` + where + ` ORDER BY created_at DESC, id DESC`
	if p.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, p.Limit, max(p.Offset, 0))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *accountsRepo) SearchAccounts(ctx context.Context, keyword string, limit int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(keyword) + "%"
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		  WHERE identifier LIKE ? ESCAPE '\'
		     OR real_name LIKE ? ESCAPE '\'
		     OR college LIKE ? ESCAPE '\'
		  ORDER BY identifier
		  LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *accountsRepo) Statistics(ctx context.Context, failureThreshold int) (store.Statistics, error) {
	stats := store.Statistics{
		ByRole:    make(map[domain.Role]int64),
		ByCollege: make(map[string]int64),
	}

	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'frozen' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN failed_attempts >= ? THEN 1 ELSE 0 END), 0)
		   FROM accounts`, failureThreshold,
	).Scan(&stats.Total, &stats.Active, &stats.Frozen, &stats.HighFailure)
	if err != nil {
		return store.Statistics{}, err
	}

	rows, err := r.q.QueryContext(ctx, `SELECT role, COUNT(1) FROM accounts GROUP BY role`)
	if err != nil {
		return store.Statistics{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return store.Statistics{}, err
		}
		stats.ByRole[domain.Role(role)] = n
	}
	if err := rows.Err(); err != nil {
		return store.Statistics{}, err
	}

	crows, err := r.q.QueryContext(ctx,
		`SELECT college, COUNT(1) FROM accounts WHERE college != '' GROUP BY college`)
	if err != nil {
		return store.Statistics{}, err
	}
	defer crows.Close()
	for crows.Next() {
		var college string
		var n int64
		if err := crows.Scan(&college, &n); err != nil {
			return store.Statistics{}, err
		}
		stats.ByCollege[college] = n
	}
	if err := crows.Err(); err != nil {
		return store.Statistics{}, err
	}

	return stats, nil
}

func (r *accountsRepo) DistinctColleges(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT DISTINCT college FROM accounts WHERE college != '' ORDER BY college`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colleges []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		colleges = append(colleges, c)
	}
	return colleges, rows.Err()
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

func buildFilter(f store.AccountFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.Identifier != "" {
		clauses = append(clauses, `identifier LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Identifier)+"%")
	}
	if f.RealName != "" {
		clauses = append(clauses, `real_name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.RealName)+"%")
	}
	if f.Role != "" {
		clauses = append(clauses, `role = ?`)
		args = append(args, string(f.Role))
	}
	if f.Status != "" {
		clauses = append(clauses, `status = ?`)
		args = append(args, string(f.Status))
	}
	if f.College != "" {
		clauses = append(clauses, `college = ?`)
		args = append(args, f.College)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	var role, status string
	err := row.Scan(
		&a.ID, &a.Identifier, &a.SecretHash, &a.RealName, &a.Phone,
		&role, &a.College, &status, &a.FailedAttempts,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Role = domain.Role(role)
	a.Status = domain.Status(status)
	return a, nil
}

func collectAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// requireRow turns a zero-row UPDATE/DELETE into store.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		if code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY {
			return store.ErrAlreadyExists
		}
	}
	return err
}
