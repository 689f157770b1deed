package timeline

import (
	"testing"
	"time"
)

func item(id int, start, end time.Duration) Item {
	return Item{ID: id, Group: id, StartTime: baseTime.Add(start), EndTime: baseTime.Add(end)}
}

func TestEnrich(t *testing.T) {
	items := []Item{
		item(0, 30*time.Second, 2*time.Minute),
		item(1, 0, 75*time.Minute),
		item(2, 30*time.Second, 45*time.Second),
	}

	got := Enrich(items)

	wantIDs := []int{1, 0, 2}
	wantStart := []string{"00:00", "00:30", "00:30"}
	wantEnd := []string{"75:00", "02:00", "00:45"}
	for i := range wantIDs {
		if got[i].ID != wantIDs[i] {
			t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, wantIDs[i])
		}
		if got[i].StartFromStart != wantStart[i] || got[i].EndFromStart != wantEnd[i] {
			t.Errorf("got[%d] offsets = %s..%s, want %s..%s", i,
				got[i].StartFromStart, got[i].EndFromStart, wantStart[i], wantEnd[i])
		}
	}

	// Input is not reordered.
	if items[0].ID != 0 {
		t.Error("Enrich() mutated its input")
	}
}

func TestEnrich_Empty(t *testing.T) {
	got := Enrich(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Enrich(nil) = %v, want empty slice", got)
	}
}

func TestDefaultBounds(t *testing.T) {
	items := []Item{
		item(0, 10*time.Second, 20*time.Second),
		item(1, 0, 5*time.Minute),
		item(2, 40*time.Second, time.Minute),
	}

	b, ok := DefaultBounds(items)
	if !ok {
		t.Fatal("DefaultBounds() ok = false")
	}
	if want := baseTime.Add(-2 * time.Minute); !b.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", b.Start, want)
	}
	// End follows the last item by start time, not the longest item.
	if want := baseTime.Add(3 * time.Minute); !b.End.Equal(want) {
		t.Errorf("End = %v, want %v", b.End, want)
	}
}

func TestDefaultBounds_Empty(t *testing.T) {
	if _, ok := DefaultBounds(nil); ok {
		t.Error("DefaultBounds(nil) ok = true, want false")
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{61 * time.Second, "01:01"},
		{90*time.Minute + 5*time.Second, "90:05"},
		{1500 * time.Millisecond, "00:01"},
		{-30 * time.Second, "-00:30"},
	}

	for _, tt := range tests {
		if got := FormatOffset(tt.in); got != tt.want {
			t.Errorf("FormatOffset(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
