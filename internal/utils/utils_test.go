package utils

import (
	"testing"
	"time"
)

func TestIsBeforeTodayIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2030, 5, 10, 23, 59, 0, 0, time.Local)

	if IsBeforeToday("2030-05-10", now) {
		t.Fatalf("today must not count as past")
	}
	if !IsBeforeToday("2030-05-09", now) {
		t.Fatalf("yesterday must count as past")
	}
	if IsBeforeToday("2030-05-11", now) {
		t.Fatalf("tomorrow must not count as past")
	}
	if IsBeforeToday("not-a-date", now) {
		t.Fatalf("unparseable date should be left to format validation")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":               "hello-world",
		"  Go & Cloud -- Native!! ": "go-cloud-native",
		"Café 2024":                 "caf-2024",
		"":                          "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSlug(t *testing.T) {
	for _, ok := range []string{"a", "hello-world", "v2-release-notes"} {
		if !IsSlug(ok) {
			t.Fatalf("%q should be a valid slug", ok)
		}
	}
	for _, bad := range []string{"", "Hello", "a--b", "-a", "a-", "a_b", "a b"} {
		if IsSlug(bad) {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestReadTime(t *testing.T) {
	if ReadTime("") != 1 {
		t.Fatalf("empty text should read in one minute")
	}
	words := make([]byte, 0, 401*2)
	for i := 0; i < 401; i++ {
		words = append(words, 'w', ' ')
	}
	if got := ReadTime(string(words)); got != 3 {
		t.Fatalf("401 words should round up to 3 minutes, got %d", got)
	}
}
