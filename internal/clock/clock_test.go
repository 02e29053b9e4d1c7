package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	start := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
	c := NewFixed(start)

	if !c.Now().Equal(start) {
		t.Fatalf("expected %v, got %v", start, c.Now())
	}

	c.Advance(time.Hour)
	if want := start.Add(time.Hour); !c.Now().Equal(want) {
		t.Errorf("expected %v after Advance, got %v", want, c.Now())
	}

	c.Set(start)
	if !c.Now().Equal(start) {
		t.Errorf("expected %v after Set, got %v", start, c.Now())
	}
}

func TestToday(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"midday", time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"just before midnight", time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"non-UTC zone is normalized", time.Date(2026, 3, 15, 1, 0, 0, 0, time.FixedZone("CET", 2*3600)), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Today(NewFixed(tt.now))
			if !got.Equal(tt.want) {
				t.Errorf("Today() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSystemIsUTC(t *testing.T) {
	if loc := (System{}).Now().Location(); loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}
