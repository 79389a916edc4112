package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("approve leave: %w", Conflict("Leave request has already been processed"))
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict kind, got %v", KindOf(err))
	}
	if Message(err) != "Leave request has already been processed" {
		t.Fatalf("unexpected message %q", Message(err))
	}
	if !IsOperational(err) {
		t.Fatalf("expected operational error")
	}
}

func TestInternalErrorsAreNotOperational(t *testing.T) {
	err := errors.New("connection reset")
	if IsOperational(err) {
		t.Fatalf("plain errors must not be operational")
	}
	if HTTPStatus(KindOf(err)) != http.StatusInternalServerError {
		t.Fatalf("expected 500")
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := Forbidden("You can only delete your own leave requests")
	if !errors.Is(err, &Error{Kind: KindForbidden}) {
		t.Fatalf("expected errors.Is to match on kind")
	}
	if errors.Is(err, &Error{Kind: KindConflict}) {
		t.Fatalf("kinds must differ")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindConflict:     http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("kind %d: got %d want %d", kind, got, want)
		}
	}
}
