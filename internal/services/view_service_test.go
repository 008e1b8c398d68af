package services

import (
	"context"
	"errors"
	"testing"

	"sitebackend/internal/domain"
	"sitebackend/internal/domain/models"
	"sitebackend/internal/repositories"
	"sitebackend/internal/viewmark"
)

type stubCounter struct {
	views map[string]int64
	calls int
	err   error
}

func (c *stubCounter) Increment(_ context.Context, kind models.ContentKind, id string) (int64, string, error) {
	c.calls++
	if c.err != nil {
		return 0, "", c.err
	}
	v, ok := c.views[id]
	if !ok {
		return 0, repositories.PathFallback, repositories.ErrNotFound
	}
	v++
	c.views[id] = v
	return v, repositories.PathFallback, nil
}

func TestViewRecordMonotonicAndDeduplicated(t *testing.T) {
	counter := &stubCounter{views: map[string]int64{"b1": 4}}
	svc := ViewService{Counter: counter, Marker: viewmark.NewMemoryMarker(0, 0)}
	ctx := context.Background()

	var last int64
	for _, visitor := range []string{"v1", "v2", "v3"} {
		res, err := svc.Record(ctx, models.KindBlog, "b1", visitor)
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if !res.Counted || res.Views <= last {
			t.Fatalf("views must increase: %+v after %d", res, last)
		}
		last = res.Views
	}

	res, err := svc.Record(ctx, models.KindBlog, "b1", "v1")
	if err != nil || res.Counted {
		t.Fatalf("repeat view should not count: %+v %v", res, err)
	}
	if counter.calls != 3 {
		t.Fatalf("expected 3 increments, got %d", counter.calls)
	}
}

func TestViewRecordWithoutVisitorAlwaysCounts(t *testing.T) {
	counter := &stubCounter{views: map[string]int64{"c1": 0}}
	svc := ViewService{Counter: counter, Marker: viewmark.NewMemoryMarker(0, 0)}
	for i := 0; i < 2; i++ {
		if _, err := svc.Record(context.Background(), models.KindCaseStudy, "c1", ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if counter.views["c1"] != 2 {
		t.Fatalf("expected 2 views, got %d", counter.views["c1"])
	}
}

func TestViewRecordErrors(t *testing.T) {
	svc := ViewService{Counter: &stubCounter{views: map[string]int64{}}, Marker: viewmark.NewMemoryMarker(0, 0)}
	if _, err := svc.Record(context.Background(), models.KindBlog, "missing", "v1"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	// A failed increment must not leave a marker behind.
	seen, _ := svc.Marker.Seen(context.Background(), "v1", string(models.KindBlog), "missing")
	if seen {
		t.Fatalf("marker should not be written on failure")
	}

	svc.Counter = &stubCounter{err: errors.New("deadlock")}
	if _, err := svc.Record(context.Background(), models.KindBlog, "b1", "v1"); !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
