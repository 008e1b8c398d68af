package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

var tableDDL = []struct {
	name string
	ddl  string
}{
	{"admin_users", `
CREATE TABLE IF NOT EXISTS admin_users (
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(50) NOT NULL DEFAULT 'admin',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_admin_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"blogs", `
CREATE TABLE IF NOT EXISTS blogs (
	id CHAR(36) PRIMARY KEY,
	slug VARCHAR(255) NOT NULL,
	title VARCHAR(255) NOT NULL,
	content MEDIUMTEXT NOT NULL,
	excerpt TEXT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'draft',
	author VARCHAR(255) NOT NULL DEFAULT '',
	author_email VARCHAR(255) NULL,
	category VARCHAR(100) NOT NULL DEFAULT '',
	tags JSON NULL,
	featured_image VARCHAR(1024) NULL,
	read_time INT NOT NULL DEFAULT 0,
	views BIGINT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	published_at DATETIME NULL,
	UNIQUE KEY uniq_blog_slug (slug),
	KEY idx_blog_status (status, published_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"case_studies", `
CREATE TABLE IF NOT EXISTS case_studies (
	id CHAR(36) PRIMARY KEY,
	slug VARCHAR(255) NOT NULL,
	title VARCHAR(255) NOT NULL,
	client VARCHAR(255) NOT NULL DEFAULT '',
	industry VARCHAR(100) NOT NULL DEFAULT '',
	service_type VARCHAR(100) NOT NULL DEFAULT '',
	challenge TEXT NULL,
	solution TEXT NULL,
	results TEXT NULL,
	content MEDIUMTEXT NOT NULL,
	excerpt TEXT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'draft',
	author VARCHAR(255) NOT NULL DEFAULT '',
	featured_image VARCHAR(1024) NULL,
	views BIGINT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	published_at DATETIME NULL,
	UNIQUE KEY uniq_case_study_slug (slug),
	KEY idx_case_study_status (status, published_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	company VARCHAR(100) NULL,
	phone VARCHAR(20) NULL,
	message TEXT NULL,
	selected_date DATE NOT NULL,
	selected_time VARCHAR(20) NOT NULL,
	timezone VARCHAR(64) NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	token CHAR(36) NOT NULL,
	cancellation_reason TEXT NULL,
	original_booking_id CHAR(36) NULL,
	notes TEXT NULL,
	confirmation_sent TINYINT(1) NOT NULL DEFAULT 0,
	confirmation_sent_at DATETIME NULL,
	reminder_sent TINYINT(1) NOT NULL DEFAULT 0,
	reminder_sent_at DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	cancelled_at DATETIME NULL,
	rescheduled_at DATETIME NULL,
	UNIQUE KEY uniq_booking_token (token),
	KEY idx_booking_status (status),
	KEY idx_booking_date (selected_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

// counterFunctions are the atomic view counters preferred by the view service.
var counterFunctions = []struct {
	name string
	ddl  string
}{
	{"increment_blog_views", `
CREATE FUNCTION increment_blog_views(row_id CHAR(36)) RETURNS BIGINT
MODIFIES SQL DATA
BEGIN
	DECLARE new_views BIGINT DEFAULT NULL;
	UPDATE blogs SET views = views + 1 WHERE id = row_id;
	SELECT views INTO new_views FROM blogs WHERE id = row_id;
	RETURN new_views;
END`},
	{"increment_case_study_views", `
CREATE FUNCTION increment_case_study_views(row_id CHAR(36)) RETURNS BIGINT
MODIFIES SQL DATA
BEGIN
	DECLARE new_views BIGINT DEFAULT NULL;
	UPDATE case_studies SET views = views + 1 WHERE id = row_id;
	SELECT views INTO new_views FROM case_studies WHERE id = row_id;
	RETURN new_views;
END`},
}

// EnsureSchema creates missing tables. Counter functions are installed
// best-effort: without CREATE ROUTINE privileges the view service falls back
// to read-then-write.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db not available")
	}
	for _, t := range tableDDL {
		if HasTable(ctx, db, t.name) {
			continue
		}
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		log.Printf("[SCHEMA] created table %s", t.name)
	}
	for _, fn := range counterFunctions {
		if HasRoutine(ctx, db, fn.name) {
			continue
		}
		if _, err := db.ExecContext(ctx, fn.ddl); err != nil {
			log.Printf("[SCHEMA] warning: cannot create function %s: %v", fn.name, err)
			continue
		}
		log.Printf("[SCHEMA] created function %s", fn.name)
	}
	return nil
}
