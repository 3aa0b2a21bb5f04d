package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("sql: no rows")
	err := Wrap(CodeNotFound, cause, "simulation not found")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to satisfy errors.Is")
	}
	typed := As(err)
	if typed == nil || typed.Code() != CodeNotFound {
		t.Fatalf("expected typed NOT_FOUND error, got %v", err)
	}
}

func TestAsThroughFmtWrap(t *testing.T) {
	inner := New(CodeValidation, "price_range must have three elements")
	outer := fmt.Errorf("decoding simulation payload: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", typed.Code())
	}
}

func TestDumpBuildsChain(t *testing.T) {
	err := Wrap(CodeDependency, errors.New("connection refused"), "querying transactions")
	dump := Dump(err)

	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d: %v", len(dump.Chain), dump.Chain)
	}
}

func TestNilErrorAccessors(t *testing.T) {
	var err *Error
	if err.Code() != CodeInternal {
		t.Fatal("nil error should report internal code")
	}
	if err.Error() != "" {
		t.Fatal("nil error should render empty string")
	}
}
