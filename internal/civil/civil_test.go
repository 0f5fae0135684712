package civil

import (
	"errors"
	"testing"
	"time"

	"github.com/cadencehq/cadence/internal/domain"
)

func TestZoneUnknownIdentifier(t *testing.T) {
	_, err := Zone("Mars/Olympus_Mons")
	if !errors.Is(err, domain.ErrInvalidTimezone) {
		t.Fatalf("expected ErrInvalidTimezone, got %v", err)
	}
}

func TestZoneEmptyMeansLocal(t *testing.T) {
	loc, err := Zone("")
	if err != nil {
		t.Fatalf("zone failed: %v", err)
	}
	if loc != time.Local {
		t.Fatalf("expected local zone, got %v", loc)
	}
}

func TestDateKeyCrossesMidnightBoundary(t *testing.T) {
	tokyo, err := Zone("Asia/Tokyo")
	if err != nil {
		t.Fatalf("zone failed: %v", err)
	}

	// 23:30 UTC on June 1 is already June 2 in Tokyo (UTC+9).
	instant := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	if got := DateKey(instant, tokyo); got != "2024-06-02" {
		t.Fatalf("expected 2024-06-02 in Tokyo, got %s", got)
	}
	if got := DateKey(instant, time.UTC); got != "2024-06-01" {
		t.Fatalf("expected 2024-06-01 in UTC, got %s", got)
	}
}

func TestDateKeySameCivilDay(t *testing.T) {
	// Any two instants on the same civil day must share a key.
	morning := time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	if DateKey(morning, time.UTC) != DateKey(night, time.UTC) {
		t.Fatal("instants on the same civil day produced different keys")
	}
}

func TestMonthKey(t *testing.T) {
	instant := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	if got := MonthKey(instant, time.UTC); got != "2024-11" {
		t.Fatalf("expected 2024-11, got %s", got)
	}
}

func TestPartsOf(t *testing.T) {
	// 2024-06-02 is a Sunday.
	instant := time.Date(2024, 6, 2, 15, 4, 5, 0, time.UTC)
	p := PartsOf(instant, time.UTC)
	if p.Year != 2024 || p.Month != 6 || p.Day != 2 || p.Weekday != 0 {
		t.Fatalf("unexpected parts: %+v", p)
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 2, 29}, // leap year
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 1, 31},
		{2024, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestClampDay(t *testing.T) {
	if got := ClampDay(2024, 4, 31); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	if got := ClampDay(2023, 2, 29); got != 28 {
		t.Fatalf("expected 28, got %d", got)
	}
	if got := ClampDay(2024, 2, 29); got != 29 {
		t.Fatalf("expected 29, got %d", got)
	}
	if got := ClampDay(2024, 6, 15); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
}

func TestMonthsBetweenAbsolute(t *testing.T) {
	jan := Parts{Year: 2024, Month: 1, Day: 15}
	apr := Parts{Year: 2024, Month: 4, Day: 15}
	if got := MonthsBetween(jan, apr); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := MonthsBetween(apr, jan); got != 3 {
		t.Fatalf("expected 3 (absolute), got %d", got)
	}
	dec23 := Parts{Year: 2023, Month: 12}
	feb24 := Parts{Year: 2024, Month: 2}
	if got := MonthsBetween(dec23, feb24); got != 2 {
		t.Fatalf("expected 2 across year boundary, got %d", got)
	}
}

func TestDayBounds(t *testing.T) {
	instant := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)
	start := DayStart(instant, time.UTC)
	end := DayEnd(instant, time.UTC)

	if !start.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start: %v", start)
	}
	if !end.Equal(time.Date(2024, 6, 15, 23, 59, 59, 999000000, time.UTC)) {
		t.Fatalf("unexpected day end: %v", end)
	}
}
