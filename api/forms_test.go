package api

import (
	"strings"
	"testing"
	"time"
)

func TestCommentFormCountsCharactersNotBytes(t *testing.T) {
	if errs := validateForm(commentForm{Text: strings.Repeat("ж", 256)}); errs.Any() {
		t.Fatalf("expected 256 runes to be accepted, got %v", errs)
	}

	errs := validateForm(commentForm{Text: strings.Repeat("ж", 257)})
	if got := errs.Get("text"); got != "Ensure this value has at most 256 characters." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRegistrationFormRules(t *testing.T) {
	errs := validateForm(registrationForm{
		Username:  "bad name",
		Email:     "nope",
		Password1: "short",
		Password2: "different",
	})

	for _, field := range []string{"username", "email", "password1", "password2"} {
		if errs.Get(field) == "" {
			t.Fatalf("expected an error for %s, got %v", field, errs)
		}
	}

	ok := validateForm(registrationForm{
		Username:  "user.name+tag@site",
		Password1: "long enough",
		Password2: "long enough",
	})
	if ok.Any() {
		t.Fatalf("expected a valid form, got %v", ok)
	}
}

func TestPostFormRequiresCategory(t *testing.T) {
	errs := validateForm(postForm{Title: "t", Text: "x", PubDate: "2024-01-01T10:00"})
	if errs.Get("category") != "This field is required." {
		t.Fatalf("expected category to be required, got %v", errs)
	}
	if errs.Get("location") != "" {
		t.Fatalf("expected location to be optional")
	}
}

func TestParsePubDate(t *testing.T) {
	want := time.Date(2025, 3, 4, 5, 6, 0, 0, time.UTC)

	for _, raw := range []string{"2025-03-04T05:06", "2025-03-04 05:06", "2025-03-04T05:06:00"} {
		got, ok := parsePubDate(raw)
		if !ok || !got.Equal(want) {
			t.Fatalf("parsePubDate(%q) = %v, %t", raw, got, ok)
		}
	}

	if _, ok := parsePubDate("04.03.2025"); ok {
		t.Fatalf("expected unsupported layout to fail")
	}
}

func TestFieldErrorsKeepFirstMessage(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("title", "first")
	errs.Add("title", "second")

	if errs.Get("title") != "first" {
		t.Fatalf("expected the first message to win, got %q", errs.Get("title"))
	}
	if (FieldErrors{}).Any() {
		t.Fatalf("expected empty errors to report none")
	}
}
