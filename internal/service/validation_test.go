package service

import (
	"errors"
	"testing"

	"github.com/bookserver/bookserver/internal/model"
)

func TestValidateBookFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		title   string
		authors []string
		isbn    string
		year    int
		wantErr error
	}{
		{"valid minimal", "Foundations of Python", []string{"Brad Miller"}, "", 0, nil},
		{"valid isbn10", "Some Book", []string{"A"}, "0306406152", 2001, nil},
		{"valid isbn13", "Some Book", []string{"A"}, "9780306406157", 2001, nil},
		{"valid hyphenated isbn", "Some Book", []string{"A"}, "978-0-306-40615-7", 2001, nil},
		{"empty title", "", []string{"A"}, "", 0, ErrInvalidTitle},
		{"blank title", "   ", []string{"A"}, "", 0, ErrInvalidTitle},
		{"no authors", "Some Book", nil, "", 0, ErrInvalidAuthors},
		{"blank authors", "Some Book", []string{"  ", ""}, "", 0, ErrInvalidAuthors},
		{"bad isbn", "Some Book", []string{"A"}, "notanisbn", 0, ErrInvalidISBN},
		{"year too early", "Some Book", []string{"A"}, "", 1200, ErrInvalidYear},
		{"year in far future", "Some Book", []string{"A"}, "", 3000, ErrInvalidYear},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateBookFields(tt.title, tt.authors, tt.isbn, tt.year)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateBookFields() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseStatusFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    model.BookStatus
		wantErr error
	}{
		{"", "", nil},
		{"active", model.BookStatusActive, nil},
		{"archived", model.BookStatusArchived, nil},
		{"deleted", "", ErrInvalidStatus},
		{"Archived", "", ErrInvalidStatus},
		{"bogus", "", ErrInvalidStatus},
	}

	for _, tt := range tests {
		tt := tt
		got, err := parseStatusFilter(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("parseStatusFilter(%q) error = %v, want %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseStatusFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeISBN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"978-0-306-40615-7", "9780306406157"},
		{"0 306 40615 2", "0306406152"},
		{"043942089x", "043942089X"},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		if got := normalizeISBN(tt.in); got != tt.want {
			t.Errorf("normalizeISBN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAuthors(t *testing.T) {
	t.Parallel()

	got := normalizeAuthors([]string{" Brad Miller ", "", "David Ranum", "  "})
	if len(got) != 2 {
		t.Fatalf("expected 2 authors, got %d: %v", len(got), got)
	}
	if got[0] != "Brad Miller" || got[1] != "David Ranum" {
		t.Errorf("unexpected authors: %v", got)
	}
}

func TestUsernameRegex(t *testing.T) {
	t.Parallel()

	valid := []string{"test_user_1", "a.b-c", "abc"}
	for _, u := range valid {
		if !usernameRegex.MatchString(u) {
			t.Errorf("username %q should be valid", u)
		}
	}

	invalid := []string{"ab", "Has Space", "UPPER", "name@host", ""}
	for _, u := range invalid {
		if usernameRegex.MatchString(u) {
			t.Errorf("username %q should be invalid", u)
		}
	}
}
