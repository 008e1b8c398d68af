package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	intconfig "sitebackend/internal/config"
	"sitebackend/internal/domain/models"
)

const blogColumns = `
	id, slug, title, content, COALESCE(excerpt,''), status, author, author_email,
	category, tags, featured_image, read_time, views,
	created_at, updated_at, published_at`

type BlogRepo struct {
	DB *sql.DB
}

func (r BlogRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanBlog(s rowScanner) (models.Blog, error) {
	var (
		b                  models.Blog
		authorEmail, image sql.NullString
		tags               sql.NullString
		publishedAt        sql.NullTime
	)
	if err := s.Scan(
		&b.ID, &b.Slug, &b.Title, &b.Content, &b.Excerpt, &b.Status, &b.Author, &authorEmail,
		&b.Category, &tags, &image, &b.ReadTime, &b.Views,
		&b.CreatedAt, &b.UpdatedAt, &publishedAt,
	); err != nil {
		return models.Blog{}, err
	}
	b.AuthorEmail = nullString(authorEmail)
	b.FeaturedImage = nullString(image)
	b.PublishedAt = nullTime(publishedAt)
	b.Tags = []string{}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &b.Tags); err != nil {
			return models.Blog{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	return b, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	return string(raw), err
}

// List returns blogs ordered by publish date then creation date.
func (r BlogRepo) List(ctx context.Context, f models.ContentFilter) ([]models.Blog, error) {
	where, args := contentWhere(f, "category", "title", "excerpt")
	query := `SELECT ` + blogColumns + ` FROM blogs` + where +
		` ORDER BY COALESCE(published_at, created_at) DESC`
	query, args = withLimit(query, args, f.Limit, f.Offset)

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	out := []models.Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BlogRepo) GetByID(ctx context.Context, id string) (models.Blog, error) {
	return r.getOne(ctx, "id", id)
}

func (r BlogRepo) GetBySlug(ctx context.Context, slug string) (models.Blog, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r BlogRepo) getOne(ctx context.Context, col, val string) (models.Blog, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE `+col+`=? LIMIT 1`, val)
	b, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Blog{}, ErrNotFound
		}
		return models.Blog{}, fmt.Errorf("select blog by %s: %w", col, err)
	}
	return b, nil
}

func (r BlogRepo) Create(ctx context.Context, b models.Blog) error {
	tags, err := encodeTags(b.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = r.db().ExecContext(ctx, `
		INSERT INTO blogs (
			id, slug, title, content, excerpt, status, author, author_email,
			category, tags, featured_image, read_time, views,
			created_at, updated_at, published_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,0,?,?,?)`,
		b.ID, b.Slug, b.Title, b.Content, b.Excerpt, b.Status, b.Author, ptrArg(b.AuthorEmail),
		b.Category, tags, ptrArg(b.FeaturedImage), b.ReadTime,
		b.CreatedAt, b.UpdatedAt, ptrArg(b.PublishedAt),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

// Update rewrites the editable columns; views and created_at are preserved.
func (r BlogRepo) Update(ctx context.Context, b models.Blog) error {
	tags, err := encodeTags(b.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := r.db().ExecContext(ctx, `
		UPDATE blogs SET
			slug=?, title=?, content=?, excerpt=?, status=?, author=?, author_email=?,
			category=?, tags=?, featured_image=?, read_time=?, updated_at=?, published_at=?
		WHERE id=?`,
		b.Slug, b.Title, b.Content, b.Excerpt, b.Status, b.Author, ptrArg(b.AuthorEmail),
		b.Category, tags, ptrArg(b.FeaturedImage), b.ReadTime, b.UpdatedAt, ptrArg(b.PublishedAt),
		b.ID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update blog: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r BlogRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM blogs WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// contentWhere builds the shared WHERE clause for blog and case-study listings.
func contentWhere(f models.ContentFilter, groupCol string, searchCols ...string) (string, []any) {
	where := []string{}
	args := []any{}
	if s := strings.TrimSpace(f.Status); s != "" && s != "all" {
		where = append(where, "status=?")
		args = append(args, s)
	}
	if g := strings.TrimSpace(f.Group); g != "" && g != "all" {
		where = append(where, groupCol+"=?")
		args = append(args, g)
	}
	if s := strings.TrimSpace(f.Search); s != "" && len(searchCols) > 0 {
		like := "%" + s + "%"
		ors := make([]string, 0, len(searchCols))
		for _, c := range searchCols {
			ors = append(ors, c+" LIKE ?")
			args = append(args, like)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}
