package services

import (
	"context"
	"fmt"
	"strings"

	"sitebackend/internal/domain"
	"sitebackend/internal/domain/models"
	"sitebackend/internal/metrics"
	"sitebackend/internal/utils"
	"sitebackend/internal/viewmark"
)

type ViewIncrementer interface {
	Increment(ctx context.Context, kind models.ContentKind, id string) (int64, string, error)
}

// ViewService counts content views. The visitor marker only throttles repeat
// views from the same browser; it is not an idempotency guarantee.
type ViewService struct {
	Counter ViewIncrementer
	Marker  viewmark.Marker
}

type ViewResult struct {
	Counted bool  `json:"counted"`
	Views   int64 `json:"views,omitempty"`
}

func (s ViewService) Record(ctx context.Context, kind models.ContentKind, id, visitor string) (ViewResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ViewResult{}, domain.ValidationError{Field: "id", Msg: "is required"}
	}

	if visitor != "" && s.Marker != nil {
		seen, err := s.Marker.Seen(ctx, visitor, string(kind), id)
		if err != nil {
			utils.LogCtx(ctx, "views", "seen", err.Error())
		} else if seen {
			return ViewResult{Counted: false}, nil
		}
	}

	views, path, err := s.Counter.Increment(ctx, kind, id)
	if err != nil {
		return ViewResult{}, storeErr(ctx, string(kind), "view", err)
	}
	metrics.IncView(string(kind), path)

	if visitor != "" && s.Marker != nil {
		if _, err := s.Marker.Mark(ctx, visitor, string(kind), id); err != nil {
			utils.LogCtx(ctx, "views", "mark", err.Error())
		}
	}
	utils.LogCtx(ctx, "views", "increment", fmt.Sprintf("kind=%s id=%s views=%d path=%s", kind, id, views, path))
	return ViewResult{Counted: true, Views: views}, nil
}
