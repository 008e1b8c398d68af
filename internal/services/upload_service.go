package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"sitebackend/internal/domain"
	"sitebackend/internal/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	DefaultUploadMaxBytes = 5 << 20
	uploadURLPrefix       = "/uploads/"
	defaultUploadFolder   = "images"
)

var imageExt = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// UploadService stores admin image uploads on local disk under Dir.
type UploadService struct {
	Dir      string
	MaxBytes int64
}

type UploadResult struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (s UploadService) maxBytes() int64 {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return DefaultUploadMaxBytes
}

// detectImage returns the content type of data when it is one of the
// accepted image formats.
func detectImage(data []byte) (string, string, bool) {
	mt := mimetype.Detect(data)
	for ct, ext := range imageExt {
		if mt.Is(ct) {
			return ct, ext, true
		}
	}
	return mt.String(), "", false
}

func (s UploadService) Save(fh *multipart.FileHeader, folder string) (UploadResult, error) {
	if fh == nil {
		return UploadResult{}, domain.ValidationError{Field: "file", Msg: "is required"}
	}
	if fh.Size > s.maxBytes() {
		return UploadResult{}, domain.ValidationError{Field: "file", Msg: fmt.Sprintf("must be at most %d bytes", s.maxBytes())}
	}
	folder = strings.TrimSpace(folder)
	if folder == "" {
		folder = defaultUploadFolder
	}
	if !utils.IsSlug(folder) {
		return UploadResult{}, domain.ValidationError{Field: "folder", Msg: "may only contain lowercase letters, digits and hyphens"}
	}

	src, err := fh.Open()
	if err != nil {
		return UploadResult{}, domain.ValidationError{Field: "file", Msg: "could not be read", Err: err}
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes()+1))
	if err != nil {
		return UploadResult{}, domain.InternalError{Err: err}
	}
	if int64(len(data)) > s.maxBytes() {
		return UploadResult{}, domain.ValidationError{Field: "file", Msg: fmt.Sprintf("must be at most %d bytes", s.maxBytes())}
	}
	ct, ext, ok := detectImage(data)
	if !ok {
		return UploadResult{}, domain.ValidationError{Field: "file", Msg: "must be a JPEG, PNG, GIF, WebP or SVG image"}
	}

	dir := filepath.Join(s.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return UploadResult{}, domain.InternalError{Err: fmt.Errorf("create upload dir: %w", err)}
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return UploadResult{}, domain.InternalError{Err: fmt.Errorf("write upload: %w", err)}
	}

	rel := path.Join(folder, name)
	return UploadResult{Path: rel, URL: uploadURLPrefix + rel, ContentType: ct, Size: int64(len(data))}, nil
}

// resolve maps a public URL or relative path to a file inside Dir, refusing
// anything that could escape it.
func (s UploadService) resolve(p string) (string, error) {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, uploadURLPrefix)
	if p == "" || strings.Contains(p, "..") || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) || filepath.IsAbs(p) {
		return "", domain.ValidationError{Field: "path", Msg: "is not a valid upload path"}
	}

	root, err := filepath.Abs(s.Dir)
	if err != nil {
		return "", domain.InternalError{Err: err}
	}
	full := filepath.Join(root, filepath.FromSlash(p))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", domain.ValidationError{Field: "path", Msg: "is not a valid upload path"}
	}
	return full, nil
}

func (s UploadService) Delete(p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NotFoundError{Resource: "upload", Err: err}
		}
		return domain.InternalError{Err: fmt.Errorf("remove upload: %w", err)}
	}
	return nil
}
