package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "sitebackend/internal/config"
	intdb "sitebackend/internal/db"
	"sitebackend/internal/domain/models"
)

// Increment paths reported by ViewCounter.
const (
	PathRPC      = "rpc"
	PathFallback = "fallback"
)

var viewTargets = map[models.ContentKind]struct {
	table    string
	function string
}{
	models.KindBlog:      {"blogs", "increment_blog_views"},
	models.KindCaseStudy: {"case_studies", "increment_case_study_views"},
}

// ViewCounter increments the views column of blogs and case studies.
type ViewCounter struct {
	DB *sql.DB
}

func (r ViewCounter) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Increment prefers the stored counter function, which updates atomically in
// the store. Without it the counter is read and rewritten as value+1; two
// concurrent fallback increments can lose one update. Views are an
// approximate metric so the fallback is kept best-effort.
func (r ViewCounter) Increment(ctx context.Context, kind models.ContentKind, id string) (int64, string, error) {
	target, ok := viewTargets[kind]
	if !ok {
		return 0, "", fmt.Errorf("unknown content kind %q", kind)
	}
	db := r.db()

	hasFn, err := intdb.LookupRoutine(ctx, db, target.function)
	if err != nil {
		return 0, "", err
	}
	if hasFn {
		var views sql.NullInt64
		if err := db.QueryRowContext(ctx, `SELECT `+target.function+`(?)`, id).Scan(&views); err != nil {
			return 0, PathRPC, fmt.Errorf("call %s: %w", target.function, err)
		}
		if !views.Valid {
			return 0, PathRPC, ErrNotFound
		}
		return views.Int64, PathRPC, nil
	}

	var current int64
	err = db.QueryRowContext(ctx, `SELECT views FROM `+target.table+` WHERE id=? LIMIT 1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, PathFallback, ErrNotFound
		}
		return 0, PathFallback, fmt.Errorf("read views: %w", err)
	}
	next := current + 1
	if _, err := db.ExecContext(ctx, `UPDATE `+target.table+` SET views=? WHERE id=?`, next, id); err != nil {
		return 0, PathFallback, fmt.Errorf("write views: %w", err)
	}
	return next, PathFallback, nil
}
