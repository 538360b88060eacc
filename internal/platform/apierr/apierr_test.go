package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOfUnwrapsWrappedErrors(t *testing.T) {
	base := NotFound("collections.get", "collection 'x' not found")
	wrapped := fmt.Errorf("lookup: %w", base)

	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Fatalf("CodeOf: want=%s got=%s", CodeNotFound, got)
	}
	if !IsCode(wrapped, CodeNotFound) {
		t.Fatalf("IsCode should match wrapped not_found")
	}
	if IsCode(nil, CodeInternal) {
		t.Fatalf("IsCode(nil) should be false")
	}
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != CodeInternal {
		t.Fatalf("CodeOf plain error: want=%s got=%s", CodeInternal, got)
	}
	if got := CodeOf(nil); got != "" {
		t.Fatalf("CodeOf(nil): want empty got=%s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:   http.StatusNotFound,
		CodeBadRequest: http.StatusBadRequest,
		CodeConflict:   http.StatusConflict,
		CodeInternal:   http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Fatalf("HTTPStatus(%s): want=%d got=%d", code, want, got)
		}
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("memberships.insert", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("Internal should unwrap to its cause")
	}
	if err.Error() != "memberships.insert: connection reset" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
