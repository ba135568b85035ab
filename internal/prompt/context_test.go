package prompt

import (
	"regexp"
	"testing"
	"time"
)

func TestCurrentDateProvider_FrozenAtConstruction(t *testing.T) {
	p := NewCurrentDateProviderAt("Current Date", time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC))

	want := "Current date in format YYYY-MM-DD: 2024-06-01"
	if got := p.Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	// The fact never changes for the provider's lifetime, even across calls.
	for i := 0; i < 3; i++ {
		if p.Info() != want {
			t.Fatalf("Info() changed on call %d", i)
		}
	}
	if p.Date() != "2024-06-01" {
		t.Errorf("Date() = %q", p.Date())
	}
	if p.Title() != "Current Date" {
		t.Errorf("Title() = %q", p.Title())
	}
}

func TestNewCurrentDateProvider_UsesWallClock(t *testing.T) {
	p := NewCurrentDateProvider("Current Date")
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(p.Date()) {
		t.Errorf("Date() = %q, want YYYY-MM-DD", p.Date())
	}
}
