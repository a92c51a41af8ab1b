package normalize

import (
	"testing"

	"marketintel/domain/apps"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Candy Crush Saga", "candy crush saga"},
		{"Spotify: Music and Podcasts", "spotify"},
		{"Subway Surfers - Endless Run", "subway surfers"},
		{"Netflix (Beta)", "netflix"},
		{"  TikTok  ", "tiktok"},
		{"-leading cut", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := CanonicalName(tt.raw)
			if got != tt.want {
				t.Errorf("CanonicalName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if again := CanonicalName(got); again != got {
				t.Errorf("CanonicalName not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{"14M", 14, true},
		{"512k", 0.5, true},
		{"1,024k", 1, true},
		{" 2.5M ", 2.5, true},
		{"Varies with device", 0, false},
		{"", 0, false},
		{"14m", 0, false},
		{"512K", 0, false},
		{"100", 0, false},
		{"M", 0, false},
	}

	for _, tt := range tests {
		got := ParseSize(tt.raw)
		if got.Valid != tt.valid || (tt.valid && got.Value != tt.want) {
			t.Errorf("ParseSize(%q) = %+v, want valid=%v value=%v", tt.raw, got, tt.valid, tt.want)
		}
	}
}

func TestParseInstalls(t *testing.T) {
	tests := []struct {
		raw   string
		want  int64
		valid bool
	}{
		{"10,000+", 10000, true},
		{"1,000,000,000+", 1000000000, true},
		{"0", 0, true},
		{"Free", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got := ParseInstalls(tt.raw)
		if got.Valid != tt.valid || got.Value != tt.want {
			t.Errorf("ParseInstalls(%q) = %+v, want valid=%v value=%v", tt.raw, got, tt.valid, tt.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw   string
		want  int64
		valid bool
	}{
		{"159", 159, true},
		{"12.0", 12, true},
		{"3.0M", 0, false},
		{"-4", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got := ParseCount(tt.raw)
		if got.Valid != tt.valid || got.Value != tt.want {
			t.Errorf("ParseCount(%q) = %+v, want valid=%v value=%v", tt.raw, got, tt.valid, tt.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$4.99", 4.99},
		{"0", 0},
		{"", 0},
		{"Everyone", 0},
		{" $ 2 ", 2},
		{"-1", 0},
	}

	for _, tt := range tests {
		if got := ParsePrice(tt.raw); got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseRating(t *testing.T) {
	if got := ParseRating("4.1"); !got.Valid || got.Value != 4.1 {
		t.Errorf("ParseRating(4.1) = %+v", got)
	}
	for _, raw := range []string{"19", "-0.5", "NaN", "", "great"} {
		if got := ParseRating(raw); got.Valid {
			t.Errorf("ParseRating(%q) should be missing, got %+v", raw, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want apps.Optional[string]
	}{
		{"2024-03-05T10:20:30Z", apps.Some("2024-03-05")},
		{"2018-08-01", apps.Some("2018-08-01")},
		{"January 7, 2018", apps.Some("2018-01-07")},
		{"Jan 7, 2018", apps.Some("2018-01-07")},
		{"1700000000", apps.Some("2023-11-14")},
		{"1700000000000", apps.Some("2023-11-14")},
		{"yesterday", apps.None[string]()},
		{"", apps.None[string]()},
	}

	for _, tt := range tests {
		if got := ParseDate(tt.raw); got != tt.want {
			t.Errorf("ParseDate(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}
