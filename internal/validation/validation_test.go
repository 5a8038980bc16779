package validation_test

import (
	"strings"
	"testing"

	"github.com/pairtrack/pairtrack/internal/validation"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"ada@example.com", "a.b+c@sub.example.org"}
	invalid := []string{"", "no-at-sign", "Ada <ada@example.com>", strings.Repeat("a", 250) + "@x.io"}

	for _, email := range valid {
		if err := validation.ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}
	for _, email := range invalid {
		if err := validation.ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"abc12", true},
		{"abc123", true},
		{"Password", true},
		{"tr4ck-me", false},
		{"sixsix", false},
		{strings.Repeat("x", 73), true},
	}

	for _, tt := range tests {
		err := validation.ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := validation.ValidateName("  "); err == nil {
		t.Error("blank name should fail")
	}
	if err := validation.ValidateName(strings.Repeat("n", 101)); err == nil {
		t.Error("long name should fail")
	}
	if err := validation.ValidateName("Grace Hopper"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := validation.NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestValidateNameRejectsControlCharacters(t *testing.T) {
	if err := validation.ValidateName("Ada\x00Lovelace"); err == nil {
		t.Error("name with control character should fail")
	}
}
