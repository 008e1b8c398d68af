package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "sitebackend/internal/config"
	"sitebackend/internal/domain/models"
)

const caseStudyColumns = `
	id, slug, title, client, industry, service_type,
	COALESCE(challenge,''), COALESCE(solution,''), COALESCE(results,''),
	content, COALESCE(excerpt,''), status, author, featured_image, views,
	created_at, updated_at, published_at`

type CaseStudyRepo struct {
	DB *sql.DB
}

func (r CaseStudyRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanCaseStudy(s rowScanner) (models.CaseStudy, error) {
	var (
		c           models.CaseStudy
		image       sql.NullString
		publishedAt sql.NullTime
	)
	if err := s.Scan(
		&c.ID, &c.Slug, &c.Title, &c.Client, &c.Industry, &c.ServiceType,
		&c.Challenge, &c.Solution, &c.Results,
		&c.Content, &c.Excerpt, &c.Status, &c.Author, &image, &c.Views,
		&c.CreatedAt, &c.UpdatedAt, &publishedAt,
	); err != nil {
		return models.CaseStudy{}, err
	}
	c.FeaturedImage = nullString(image)
	c.PublishedAt = nullTime(publishedAt)
	return c, nil
}

func (r CaseStudyRepo) List(ctx context.Context, f models.ContentFilter) ([]models.CaseStudy, error) {
	where, args := contentWhere(f, "industry", "title", "client", "excerpt")
	query := `SELECT ` + caseStudyColumns + ` FROM case_studies` + where +
		` ORDER BY COALESCE(published_at, created_at) DESC`
	query, args = withLimit(query, args, f.Limit, f.Offset)

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list case studies: %w", err)
	}
	defer rows.Close()

	out := []models.CaseStudy{}
	for rows.Next() {
		c, err := scanCaseStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case study: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r CaseStudyRepo) GetByID(ctx context.Context, id string) (models.CaseStudy, error) {
	return r.getOne(ctx, "id", id)
}

func (r CaseStudyRepo) GetBySlug(ctx context.Context, slug string) (models.CaseStudy, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r CaseStudyRepo) getOne(ctx context.Context, col, val string) (models.CaseStudy, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+caseStudyColumns+` FROM case_studies WHERE `+col+`=? LIMIT 1`, val)
	c, err := scanCaseStudy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CaseStudy{}, ErrNotFound
		}
		return models.CaseStudy{}, fmt.Errorf("select case study by %s: %w", col, err)
	}
	return c, nil
}

func (r CaseStudyRepo) Create(ctx context.Context, c models.CaseStudy) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO case_studies (
			id, slug, title, client, industry, service_type,
			challenge, solution, results, content, excerpt, status, author,
			featured_image, views, created_at, updated_at, published_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,0,?,?,?)`,
		c.ID, c.Slug, c.Title, c.Client, c.Industry, c.ServiceType,
		c.Challenge, c.Solution, c.Results, c.Content, c.Excerpt, c.Status, c.Author,
		ptrArg(c.FeaturedImage), c.CreatedAt, c.UpdatedAt, ptrArg(c.PublishedAt),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert case study: %w", err)
	}
	return nil
}

func (r CaseStudyRepo) Update(ctx context.Context, c models.CaseStudy) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE case_studies SET
			slug=?, title=?, client=?, industry=?, service_type=?,
			challenge=?, solution=?, results=?, content=?, excerpt=?, status=?, author=?,
			featured_image=?, updated_at=?, published_at=?
		WHERE id=?`,
		c.Slug, c.Title, c.Client, c.Industry, c.ServiceType,
		c.Challenge, c.Solution, c.Results, c.Content, c.Excerpt, c.Status, c.Author,
		ptrArg(c.FeaturedImage), c.UpdatedAt, ptrArg(c.PublishedAt),
		c.ID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update case study: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r CaseStudyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM case_studies WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete case study: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
