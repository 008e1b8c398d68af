package models

import "time"

// ContentKind names a view-countable content table.
type ContentKind string

const (
	KindBlog      ContentKind = "blog"
	KindCaseStudy ContentKind = "case_study"
)

type Blog struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	Status        string     `json:"status"`
	Author        string     `json:"author"`
	AuthorEmail   *string    `json:"author_email,omitempty"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	FeaturedImage *string    `json:"featured_image,omitempty"`
	ReadTime      int        `json:"read_time"`
	Views         int64      `json:"views"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

type CaseStudy struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Client        string     `json:"client"`
	Industry      string     `json:"industry"`
	ServiceType   string     `json:"service_type"`
	Challenge     string     `json:"challenge"`
	Solution      string     `json:"solution"`
	Results       string     `json:"results"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	Status        string     `json:"status"`
	Author        string     `json:"author"`
	FeaturedImage *string    `json:"featured_image,omitempty"`
	Views         int64      `json:"views"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

// ContentFilter narrows blog and case-study listings. Group matches the
// blog category or the case-study industry.
type ContentFilter struct {
	Status string
	Group  string
	Search string
	Limit  int
	Offset int
}

// AdminUser is a dashboard account.
type AdminUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
}
