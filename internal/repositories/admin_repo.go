package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "sitebackend/internal/config"
	"sitebackend/internal/domain/models"
)

type AdminRepo struct {
	DB *sql.DB
}

func (r AdminRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AdminRepo) GetByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	var u models.AdminUser
	err := r.db().QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role
		FROM admin_users
		WHERE email=? LIMIT 1`, strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AdminUser{}, ErrNotFound
		}
		return models.AdminUser{}, fmt.Errorf("select admin: %w", err)
	}
	return u, nil
}

// Upsert creates the account or refreshes its name and password hash.
func (r AdminRepo) Upsert(ctx context.Context, u models.AdminUser) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO admin_users (id, name, email, password_hash, role)
		VALUES (?,?,?,?,?)
		ON DUPLICATE KEY UPDATE name=VALUES(name), password_hash=VALUES(password_hash)`,
		u.ID, u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.Role,
	)
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}
