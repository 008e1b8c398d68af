package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"not found", NotFoundError{Resource: "booking"}, IsNotFound},
		{"validation", ValidationError{Field: "email", Msg: "must be a valid email"}, IsValidation},
		{"unauthorized", UnauthorizedError{}, IsUnauthorized},
		{"conflict", ConflictError{Resource: "blog", Msg: "slug already exists"}, IsConflict},
		{"internal", InternalError{Err: errors.New("boom")}, IsInternal},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("handler: %w", tc.err)
		if !tc.is(wrapped) {
			t.Fatalf("%s: predicate did not match wrapped error", tc.name)
		}
	}
	if IsConflict(NotFoundError{}) {
		t.Fatalf("conflict predicate matched not found error")
	}
}

func TestValidationErrorMessageListsEveryField(t *testing.T) {
	err := ValidationError{Fields: []FieldError{
		{Field: "name", Message: "is required"},
		{Field: "selected_date", Message: "cannot be in the past"},
	}}
	want := "name: is required; selected_date: cannot be in the past"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
	if len(err.Details()) != 2 {
		t.Fatalf("expected two details, got %d", len(err.Details()))
	}

	single := ValidationError{Field: "token", Msg: "invalid"}
	if d := single.Details(); len(d) != 1 || d[0].Field != "token" {
		t.Fatalf("single field details not synthesized: %+v", d)
	}
}
