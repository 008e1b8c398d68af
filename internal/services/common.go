package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sitebackend/internal/domain"
	"sitebackend/internal/repositories"
	"sitebackend/internal/utils"
)

// storeErr maps repository errors onto the domain taxonomy. Anything not
// recognised is logged and returned as an InternalError so store details
// never reach the client.
func storeErr(ctx context.Context, resource, action string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return domain.NotFoundError{Resource: resource, Err: err}
	case errors.Is(err, repositories.ErrDuplicate):
		return domain.ConflictError{Resource: resource, Msg: "already exists", Err: err}
	}
	utils.LogCtx(ctx, resource, action, fmt.Sprintf("store error: %v", err))
	return domain.InternalError{Err: err}
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
