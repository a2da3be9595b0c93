package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Prepare()

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, user_type, is_verified, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.UserType,
		user.IsVerified,
		user.IsActive,
		time.Now().UTC(),
	).Scan(&user.CreatedAt)

	return wrapWriteErr(err)
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, user_type, is_verified, is_active, created_at, last_login_at`

func scanUser(row pgx.Row, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.UserType,
		&user.IsVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	var user models.User
	err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg), &user)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

// UserFilter narrows List. Nil fields match every user.
type UserFilter struct {
	UserType   string
	IsActive   *bool
	IsVerified *bool
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserType != "" {
		add("user_type = $%d", filter.UserType)
	}
	if filter.IsActive != nil {
		add("is_active = $%d", *filter.IsActive)
	}
	if filter.IsVerified != nil {
		add("is_verified = $%d", *filter.IsVerified)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, email`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update writes the profile, role and status columns. Email and password
// are not changed here.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4, user_type = $5, is_verified = $6, is_active = $7
		WHERE id = $1
	`, user.ID, user.FirstName, user.LastName, user.Phone, user.UserType, user.IsVerified, user.IsActive)
	if err != nil {
		return wrapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) CountByType(ctx context.Context, userType string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE user_type = $1`, userType).Scan(&n)
	return n, err
}
