package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestKindMappings(t *testing.T) {
	tests := []struct {
		err      *AppError
		kind     Kind
		httpCode int
		grpcCode codes.Code
	}{
		{BadRequest("bad"), KindBadRequest, http.StatusBadRequest, codes.InvalidArgument},
		{Conflict("dup"), KindConflict, http.StatusConflict, codes.AlreadyExists},
		{NotFound("missing"), KindNotFound, http.StatusNotFound, codes.NotFound},
		{Unprocessable("stock"), KindUnprocessableEntity, http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{Internal("boom"), KindInternal, http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.err.Kind() != tt.kind {
				t.Fatalf("kind = %s, want %s", tt.err.Kind(), tt.kind)
			}
			if tt.err.StatusCode() != tt.httpCode {
				t.Fatalf("status = %d, want %d", tt.err.StatusCode(), tt.httpCode)
			}
			if tt.err.GRPCCode() != tt.grpcCode {
				t.Fatalf("grpc code = %s, want %s", tt.err.GRPCCode(), tt.grpcCode)
			}
		})
	}
}

func TestErrorMessageAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("failed to save", WithCause(cause))

	if got := err.Error(); got != "failed to save: disk full" {
		t.Fatalf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
}

func TestWithDetail(t *testing.T) {
	err := Conflict("product code already exists", WithDetail("code", "A-123"))

	details := err.Details()
	if details["code"] != "A-123" {
		t.Fatalf("details = %v", details)
	}
}

func TestFrom(t *testing.T) {
	appErr := NotFound("gone")
	if From(appErr) != appErr {
		t.Fatal("expected the same AppError back")
	}

	wrapped := fmt.Errorf("handler: %w", appErr)
	if From(wrapped).Kind() != KindNotFound {
		t.Fatal("expected wrapped AppError to be recovered")
	}

	plain := errors.New("unexpected")
	got := From(plain)
	if got.Kind() != KindInternal {
		t.Fatalf("kind = %s, want internal", got.Kind())
	}
	if !errors.Is(got, plain) {
		t.Fatal("expected the original error as cause")
	}

	if From(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("dup"))
	if !IsKind(err, KindConflict) {
		t.Fatal("expected conflict kind")
	}
	if IsKind(err, KindNotFound) {
		t.Fatal("conflict is not not_found")
	}
	if IsKind(errors.New("plain"), KindInternal) {
		t.Fatal("plain errors carry no kind")
	}
}

func TestEmptyMessageDefaultsToKind(t *testing.T) {
	err := New(KindConflict, "")
	if err.Message() != string(KindConflict) {
		t.Fatalf("message = %q", err.Message())
	}
}
