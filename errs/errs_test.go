package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestNewDatabaseErrorClassifiesCauses(t *testing.T) {
	cases := []struct {
		name   string
		cause  error
		status int
		is     error
	}{
		{"missing row", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), http.StatusNotFound, ErrNotFound},
		{"sqlite unique", errors.New("UNIQUE constraint failed: categories.slug"), http.StatusConflict, ErrUniqueConstraintViolation},
		{"postgres unique", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username"`), http.StatusConflict, ErrUniqueConstraintViolation},
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), http.StatusBadRequest, ErrForeignKeyConstraint},
		{"anything else", errors.New("connection refused"), http.StatusInternalServerError, ErrDatabaseQuery},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewDatabaseError("find", "post", tc.cause)
			if err.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, err.StatusCode)
			}
			if !errors.Is(err, tc.is) {
				t.Fatalf("expected %v to wrap %v", err, tc.is)
			}
		})
	}
}

func TestNewDatabaseErrorKeepsApiErr(t *testing.T) {
	original := NewNotFound("category")
	if got := NewDatabaseError("find", "category", original); got != original {
		t.Fatalf("expected api error to pass through unchanged")
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(NewNotFound("post")); got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
	if got := StatusOf(fmt.Errorf("wrapped: %w", NewForbiddenError("nope"))); got != http.StatusForbidden {
		t.Fatalf("expected 403 through wrapping, got %d", got)
	}
	if got := StatusOf(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}

func TestGetFullErrorFollowsCauses(t *testing.T) {
	err := NewDatabaseError("update", "comment", errors.New("disk I/O error"))
	if got := err.GetFullError(); got != "database query failed: Failed to update comment -> disk I/O error" {
		t.Fatalf("unexpected full error %q", got)
	}
	if !errors.Is(NewNotFound("user"), ErrNotFound) {
		t.Fatalf("expected not found errors to wrap ErrNotFound")
	}
}
