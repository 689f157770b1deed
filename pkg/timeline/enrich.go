package timeline

import (
	"fmt"
	"sort"
	"time"
)

// BoundsPadding is added before the first item and after the last one.
const BoundsPadding = 2 * time.Minute

// EnrichedItem is an Item with offsets relative to the earliest start.
type EnrichedItem struct {
	Item
	StartFromStart string `json:"start_from_start"`
	EndFromStart   string `json:"end_from_start"`
}

// Bounds is the initial visible window of the viewer.
type Bounds struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SortByStart returns a copy of items ordered by start time, ascending.
// Items starting together keep their export order.
func SortByStart(items []Item) []Item {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}

// Enrich sorts items by start time and annotates each with its start and
// end offset from the earliest start, formatted as mm:ss.
func Enrich(items []Item) []EnrichedItem {
	sorted := SortByStart(items)
	out := make([]EnrichedItem, 0, len(sorted))
	if len(sorted) == 0 {
		return out
	}

	origin := sorted[0].StartTime
	for _, it := range sorted {
		out = append(out, EnrichedItem{
			Item:           it,
			StartFromStart: FormatOffset(it.StartTime.Sub(origin)),
			EndFromStart:   FormatOffset(it.EndTime.Sub(origin)),
		})
	}
	return out
}

// DefaultBounds returns the window from the earliest start minus
// BoundsPadding to the end of the last-starting item plus BoundsPadding.
func DefaultBounds(items []Item) (Bounds, bool) {
	if len(items) == 0 {
		return Bounds{}, false
	}
	sorted := SortByStart(items)
	return Bounds{
		Start: sorted[0].StartTime.Add(-BoundsPadding),
		End:   sorted[len(sorted)-1].EndTime.Add(BoundsPadding),
	}, true
}

// FormatOffset renders d as mm:ss. Minutes are not wrapped into hours, so
// 75 minutes prints as 75:00. Negative offsets carry a leading minus.
func FormatOffset(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%s%02d:%02d", sign, total/60, total%60)
}
