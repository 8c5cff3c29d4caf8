package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/coworking-desk-booking/internal/utils"
)

// User mirrors the 'users' table.
type User struct {
	ID           uint64
	TenantID     uint64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// CreateOwner registers a new OWNER together with its tenant row in a
// single transaction. The tenant name defaults to the email's local
// part when the caller supplies none. Returns the new user ID and
// tenant ID.
func (r *UserRepo) CreateOwner(ctx context.Context, email, password, tenantName string, cost int) (uint64, uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, 0, err
	}
	if tenantName = strings.TrimSpace(tenantName); tenantName == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			tenantName = email[:at]
		} else {
			tenantName = email
		}
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, "INSERT INTO tenants (name) VALUES (?)", tenantName)
	if err != nil {
		return 0, 0, err
	}
	tid, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	res, err = tx.ExecContext(ctx,
		"INSERT INTO users (tenant_id, email, password_hash, role) VALUES (?,?,?,?)",
		tid, email, hash, "OWNER")
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, 0, ErrEmailExists
		}
		return 0, 0, err
	}
	uid, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	committed = true
	return uint64(uid), uint64(tid), nil
}

// CreateStaff inserts a STAFF user into an existing tenant and returns its ID.
func (r *UserRepo) CreateStaff(ctx context.Context, tenantID uint64, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (tenant_id, email, password_hash, role) VALUES (?,?,?,?)",
		tenantID, email, hash, "STAFF")
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,tenant_id,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,tenant_id,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
