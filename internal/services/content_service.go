package services

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"sitebackend/internal/domain"
	"sitebackend/internal/domain/models"
	"sitebackend/internal/repositories"
	"sitebackend/internal/utils"
	"sitebackend/internal/validation"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type BlogStore interface {
	List(ctx context.Context, f models.ContentFilter) ([]models.Blog, error)
	GetByID(ctx context.Context, id string) (models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (models.Blog, error)
	Create(ctx context.Context, b models.Blog) error
	Update(ctx context.Context, b models.Blog) error
	Delete(ctx context.Context, id string) error
}

type CaseStudyStore interface {
	List(ctx context.Context, f models.ContentFilter) ([]models.CaseStudy, error)
	GetByID(ctx context.Context, id string) (models.CaseStudy, error)
	GetBySlug(ctx context.Context, slug string) (models.CaseStudy, error)
	Create(ctx context.Context, c models.CaseStudy) error
	Update(ctx context.Context, c models.CaseStudy) error
	Delete(ctx context.Context, id string) error
}

// ImageRemover deletes an uploaded file by its public path.
type ImageRemover interface {
	Delete(path string) error
}

const defaultListTimeout = 10 * time.Second

var (
	richText  = bluemonday.UGCPolicy()
	plainText = bluemonday.StrictPolicy()
)

// ContentService publishes blogs and case studies.
type ContentService struct {
	Blogs       BlogStore
	CaseStudies CaseStudyStore
	Images      ImageRemover
	Validator   *validation.Validator
	ListTimeout time.Duration
	Now         func() time.Time
}

func (s ContentService) now() time.Time { return clock(s.Now) }

func (s ContentService) validate(req any) error {
	v := s.Validator
	if v == nil {
		v = validation.New(s.Now)
	}
	return v.Struct(req)
}

func (s ContentService) listCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	d := s.ListTimeout
	if d <= 0 {
		d = defaultListTimeout
	}
	return context.WithTimeout(ctx, d)
}

// visibleFilter narrows anonymous callers to published content; for admins
// an empty status or "all" lists everything.
func visibleFilter(f models.ContentFilter, rc domain.RequestContext) (models.ContentFilter, error) {
	f.Status = strings.TrimSpace(f.Status)
	if !rc.Authenticated() {
		f.Status = string(domain.StatusPublished)
		return f, nil
	}
	switch f.Status {
	case "", "all":
		f.Status = ""
	case string(domain.StatusDraft), string(domain.StatusPublished):
	default:
		return f, domain.ValidationError{Field: "status", Msg: "must be one of: draft, published, all"}
	}
	return f, nil
}

func visible(status string, rc domain.RequestContext) bool {
	return rc.Authenticated() || status == string(domain.StatusPublished)
}

// publishState resolves the stored status and published_at. published_at is
// stamped when content enters the published state and kept otherwise.
func publishState(requested, current string, publishedAt *time.Time, now time.Time) (string, *time.Time) {
	status := requested
	if status == "" {
		status = current
	}
	if status == "" {
		status = string(domain.StatusDraft)
	}
	if status == string(domain.StatusPublished) && current != string(domain.StatusPublished) {
		return status, &now
	}
	return status, publishedAt
}

func resolveSlug(requested, current, title string) (string, error) {
	slug := strings.TrimSpace(requested)
	if slug == "" {
		slug = current
	}
	if slug == "" {
		slug = utils.Slugify(title)
	}
	if !utils.IsSlug(slug) {
		return "", domain.ValidationError{Field: "slug", Msg: "may only contain lowercase letters, digits and hyphens"}
	}
	return slug, nil
}

func plain(s string) string {
	return html.UnescapeString(plainText.Sanitize(s))
}

func excerptOf(excerpt, content string) string {
	if e := strings.TrimSpace(excerpt); e != "" {
		return plain(e)
	}
	text := utils.NormalizeSpace(plain(content))
	if r := []rune(text); len(r) > 200 {
		return strings.TrimSpace(string(r[:200])) + "..."
	}
	return text
}

func contentConflict(resource string, err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return domain.ConflictError{Resource: resource, Msg: "slug already exists", Err: err}
	}
	return nil
}

func (s ContentService) removeImage(ctx context.Context, path *string) {
	if s.Images == nil || path == nil || !strings.HasPrefix(*path, "/uploads/") {
		return
	}
	if err := s.Images.Delete(*path); err != nil && !domain.IsNotFound(err) {
		utils.LogCtx(ctx, "content", "delete_image", err.Error())
	}
}

// Blogs.

func (s ContentService) ListBlogs(ctx context.Context, f models.ContentFilter, rc domain.RequestContext) ([]models.Blog, error) {
	f, err := visibleFilter(f, rc)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.listCtx(ctx)
	defer cancel()
	list, err := s.Blogs.List(ctx, f)
	if err != nil {
		return nil, storeErr(ctx, "blog", "list", err)
	}
	return list, nil
}

// GetBlog resolves ref as an id first, then as a slug.
func (s ContentService) GetBlog(ctx context.Context, ref string, rc domain.RequestContext) (models.Blog, error) {
	ref = strings.TrimSpace(ref)
	b, err := s.Blogs.GetByID(ctx, ref)
	if errors.Is(err, repositories.ErrNotFound) {
		b, err = s.Blogs.GetBySlug(ctx, ref)
	}
	if err != nil {
		return models.Blog{}, storeErr(ctx, "blog", "get", err)
	}
	if !visible(b.Status, rc) {
		return models.Blog{}, domain.NotFoundError{Resource: "blog"}
	}
	return b, nil
}

func (s ContentService) applyBlog(b *models.Blog, req models.BlogRequest, now time.Time) error {
	slug, err := resolveSlug(req.Slug, b.Slug, req.Title)
	if err != nil {
		return err
	}
	b.Slug = slug
	b.Title = utils.NormalizeSpace(req.Title)
	b.Content = richText.Sanitize(req.Content)
	b.Excerpt = excerptOf(req.Excerpt, b.Content)
	b.Author = utils.NormalizeSpace(req.Author)
	b.AuthorEmail = utils.OptionalString(req.AuthorEmail)
	b.Category = utils.NormalizeSpace(req.Category)
	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		tags = append(tags, utils.NormalizeSpace(t))
	}
	b.Tags = tags
	b.FeaturedImage = utils.OptionalString(req.FeaturedImage)
	b.ReadTime = utils.ReadTime(plain(b.Content))
	b.Status, b.PublishedAt = publishState(req.Status, b.Status, b.PublishedAt, now)
	b.UpdatedAt = now
	return nil
}

func (s ContentService) CreateBlog(ctx context.Context, req models.BlogRequest, rc domain.RequestContext) (models.Blog, error) {
	if err := s.validate(req); err != nil {
		return models.Blog{}, err
	}
	now := s.now()
	b := models.Blog{ID: uuid.NewString(), CreatedAt: now}
	if err := s.applyBlog(&b, req, now); err != nil {
		return models.Blog{}, err
	}
	if b.Author == "" {
		b.Author = rc.Name
	}
	if b.AuthorEmail == nil && rc.Email != "" {
		email := rc.Email
		b.AuthorEmail = &email
	}

	if err := s.Blogs.Create(ctx, b); err != nil {
		if cerr := contentConflict("blog", err); cerr != nil {
			return models.Blog{}, cerr
		}
		return models.Blog{}, storeErr(ctx, "blog", "create", err)
	}
	utils.LogCtx(ctx, "blog", "create", "blog_id="+b.ID+" slug="+b.Slug)
	return b, nil
}

func (s ContentService) UpdateBlog(ctx context.Context, id string, req models.BlogRequest) (models.Blog, error) {
	if err := s.validate(req); err != nil {
		return models.Blog{}, err
	}
	b, err := s.Blogs.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Blog{}, storeErr(ctx, "blog", "update", err)
	}
	oldImage := b.FeaturedImage
	if err := s.applyBlog(&b, req, s.now()); err != nil {
		return models.Blog{}, err
	}
	if err := s.Blogs.Update(ctx, b); err != nil {
		if cerr := contentConflict("blog", err); cerr != nil {
			return models.Blog{}, cerr
		}
		return models.Blog{}, storeErr(ctx, "blog", "update", err)
	}
	if oldImage != nil && (b.FeaturedImage == nil || *b.FeaturedImage != *oldImage) {
		s.removeImage(ctx, oldImage)
	}
	utils.LogCtx(ctx, "blog", "update", "blog_id="+b.ID)
	return b, nil
}

func (s ContentService) DeleteBlog(ctx context.Context, id string) error {
	b, err := s.Blogs.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return storeErr(ctx, "blog", "delete", err)
	}
	if err := s.Blogs.Delete(ctx, b.ID); err != nil {
		return storeErr(ctx, "blog", "delete", err)
	}
	s.removeImage(ctx, b.FeaturedImage)
	utils.LogCtx(ctx, "blog", "delete", "blog_id="+b.ID)
	return nil
}

// Case studies.

func (s ContentService) ListCaseStudies(ctx context.Context, f models.ContentFilter, rc domain.RequestContext) ([]models.CaseStudy, error) {
	f, err := visibleFilter(f, rc)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.listCtx(ctx)
	defer cancel()
	list, err := s.CaseStudies.List(ctx, f)
	if err != nil {
		return nil, storeErr(ctx, "case_study", "list", err)
	}
	return list, nil
}

func (s ContentService) GetCaseStudy(ctx context.Context, ref string, rc domain.RequestContext) (models.CaseStudy, error) {
	ref = strings.TrimSpace(ref)
	c, err := s.CaseStudies.GetByID(ctx, ref)
	if errors.Is(err, repositories.ErrNotFound) {
		c, err = s.CaseStudies.GetBySlug(ctx, ref)
	}
	if err != nil {
		return models.CaseStudy{}, storeErr(ctx, "case_study", "get", err)
	}
	if !visible(c.Status, rc) {
		return models.CaseStudy{}, domain.NotFoundError{Resource: "case_study"}
	}
	return c, nil
}

func (s ContentService) applyCaseStudy(c *models.CaseStudy, req models.CaseStudyRequest, now time.Time) error {
	slug, err := resolveSlug(req.Slug, c.Slug, req.Title)
	if err != nil {
		return err
	}
	c.Slug = slug
	c.Title = utils.NormalizeSpace(req.Title)
	c.Client = utils.NormalizeSpace(req.Client)
	c.Industry = utils.NormalizeSpace(req.Industry)
	c.ServiceType = utils.NormalizeSpace(req.ServiceType)
	c.Challenge = richText.Sanitize(req.Challenge)
	c.Solution = richText.Sanitize(req.Solution)
	c.Results = richText.Sanitize(req.Results)
	c.Content = richText.Sanitize(req.Content)
	c.Excerpt = excerptOf(req.Excerpt, c.Content)
	c.Author = utils.NormalizeSpace(req.Author)
	c.FeaturedImage = utils.OptionalString(req.FeaturedImage)
	c.Status, c.PublishedAt = publishState(req.Status, c.Status, c.PublishedAt, now)
	c.UpdatedAt = now
	return nil
}

func (s ContentService) CreateCaseStudy(ctx context.Context, req models.CaseStudyRequest, rc domain.RequestContext) (models.CaseStudy, error) {
	if err := s.validate(req); err != nil {
		return models.CaseStudy{}, err
	}
	now := s.now()
	c := models.CaseStudy{ID: uuid.NewString(), CreatedAt: now}
	if err := s.applyCaseStudy(&c, req, now); err != nil {
		return models.CaseStudy{}, err
	}
	if c.Author == "" {
		c.Author = rc.Name
	}
	if err := s.CaseStudies.Create(ctx, c); err != nil {
		if cerr := contentConflict("case_study", err); cerr != nil {
			return models.CaseStudy{}, cerr
		}
		return models.CaseStudy{}, storeErr(ctx, "case_study", "create", err)
	}
	utils.LogCtx(ctx, "case_study", "create", "case_study_id="+c.ID+" slug="+c.Slug)
	return c, nil
}

func (s ContentService) UpdateCaseStudy(ctx context.Context, id string, req models.CaseStudyRequest) (models.CaseStudy, error) {
	if err := s.validate(req); err != nil {
		return models.CaseStudy{}, err
	}
	c, err := s.CaseStudies.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.CaseStudy{}, storeErr(ctx, "case_study", "update", err)
	}
	oldImage := c.FeaturedImage
	if err := s.applyCaseStudy(&c, req, s.now()); err != nil {
		return models.CaseStudy{}, err
	}
	if err := s.CaseStudies.Update(ctx, c); err != nil {
		if cerr := contentConflict("case_study", err); cerr != nil {
			return models.CaseStudy{}, cerr
		}
		return models.CaseStudy{}, storeErr(ctx, "case_study", "update", err)
	}
	if oldImage != nil && (c.FeaturedImage == nil || *c.FeaturedImage != *oldImage) {
		s.removeImage(ctx, oldImage)
	}
	utils.LogCtx(ctx, "case_study", "update", "case_study_id="+c.ID)
	return c, nil
}

func (s ContentService) DeleteCaseStudy(ctx context.Context, id string) error {
	c, err := s.CaseStudies.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return storeErr(ctx, "case_study", "delete", err)
	}
	if err := s.CaseStudies.Delete(ctx, c.ID); err != nil {
		return storeErr(ctx, "case_study", "delete", err)
	}
	s.removeImage(ctx, c.FeaturedImage)
	utils.LogCtx(ctx, "case_study", "delete", "case_study_id="+c.ID)
	return nil
}
