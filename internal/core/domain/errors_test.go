package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bare", ErrStoreClosed, "[PV-STOR-5031] store closed"},
		{"keyed", ErrStoreClosed.WithKey("theme"), `[PV-STOR-5031] store closed (key "theme")`},
		{
			"keyed with cause",
			ErrPersistenceWrite.WithKey("theme").Wrap(errors.New("quota exceeded")),
			`[PV-STOR-5000] persistence write failed (key "theme"): quota exceeded`,
		},
		{
			"details",
			ErrPersistenceUnavailable.WithDetails("no backend"),
			"[PV-STOR-5030] persistence backend unavailable: no backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_IsByCode(t *testing.T) {
	keyed := fmt.Errorf("open: %w", ErrDeserialization.WithKey("a").Wrap(errors.New("bad json")))

	if !errors.Is(keyed, ErrDeserialization) {
		t.Error("keyed copy should match its sentinel")
	}
	if errors.Is(keyed, ErrSerialization) {
		t.Error("different code should not match")
	}
	if errors.Is(ErrDeserialization, errors.New("cannot decode persisted value")) {
		t.Error("plain error with the same text should not match")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrPersistenceWrite.Wrap(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if errors.Unwrap(ErrPersistenceWrite) != nil {
		t.Error("sentinel should have no cause")
	}
}

func TestDomainError_CopiesDoNotMutate(t *testing.T) {
	keyed := ErrDeserialization.WithKey("a").Wrap(errors.New("boom"))

	if ErrDeserialization.Key != "" || ErrDeserialization.Cause != nil {
		t.Fatal("sentinel was modified")
	}
	if keyed.Key != "a" || keyed.Cause == nil {
		t.Errorf("copy = %+v", keyed)
	}
}

func TestAccessors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		key      string
		category string
	}{
		{"invalid key", ErrInvalidKey, "PV-ARGS-4000", "", CategoryArgs},
		{"wrapped data", fmt.Errorf("x: %w", ErrSerialization.WithKey("n")), "PV-DATA-4221", "n", CategoryData},
		{"storage", ErrPersistenceUnavailable.WithKey("theme"), "PV-STOR-5030", "theme", CategoryStorage},
		{"plain", errors.New("plain"), "", "", ""},
		{"nil", nil, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.code {
				t.Errorf("CodeOf() = %q, want %q", got, tt.code)
			}
			if got := KeyOf(tt.err); got != tt.key {
				t.Errorf("KeyOf() = %q, want %q", got, tt.key)
			}
			if got := CategoryOf(tt.err); got != tt.category {
				t.Errorf("CategoryOf() = %q, want %q", got, tt.category)
			}
		})
	}
}

func TestCategory_MalformedCode(t *testing.T) {
	if got := New("BROKEN", "x").Category(); got != "" {
		t.Errorf("Category() = %q, want empty", got)
	}
}
