// Package timeline exports slow resources as timeline items and serves
// them to a browser viewer.
package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/state"
)

// File names written by Export.Write.
const (
	ItemsFile  = "result.json"
	GroupsFile = "groups.json"
)

// ErrNoData is returned by Load when no timeline has been exported to the directory.
var ErrNoData = errors.New("no timeline data")

// Item is one bar on the timeline.
type Item struct {
	ID         int       `json:"id"`
	Group      int       `json:"group"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	ParsedTime int       `json:"parsedTime"`
}

// Group is one row of the timeline. Each item has its own group.
type Group struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Export holds the timeline items and their groups.
type Export struct {
	Items  []Item
	Groups []Group
}

// Build selects records whose elapsed seconds exceed timeLimit. IDs are
// assigned 0..n-1 over the selection, in the order the records are given.
func Build(records []*state.Record, timeLimit int) *Export {
	exp := &Export{Items: []Item{}, Groups: []Group{}}

	for _, rec := range records {
		if rec.ElapsedSeconds <= timeLimit {
			continue
		}
		id := len(exp.Items)
		exp.Items = append(exp.Items, Item{
			ID:         id,
			Group:      id,
			Title:      rec.Key,
			StartTime:  rec.StartTime,
			EndTime:    rec.EndTime,
			ParsedTime: rec.ElapsedSeconds,
		})
		exp.Groups = append(exp.Groups, Group{ID: id, Title: rec.Key})
	}

	return exp
}

// Write stores the export as ItemsFile and GroupsFile under dir, creating
// it if needed. It returns the paths written.
func (e *Export) Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating timeline directory: %w", err)
	}

	items := filepath.Join(dir, ItemsFile)
	if err := writeJSON(items, e.Items); err != nil {
		return nil, err
	}
	groups := filepath.Join(dir, GroupsFile)
	if err := writeJSON(groups, e.Groups); err != nil {
		return nil, err
	}
	return []string{items, groups}, nil
}

// Load reads a previously written export from dir.
func Load(dir string) (*Export, error) {
	exp := &Export{}
	if err := readJSON(filepath.Join(dir, ItemsFile), &exp.Items); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, GroupsFile), &exp.Groups); err != nil {
		return nil, err
	}
	return exp, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the configured timeline directory
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s not found", ErrNoData, path)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
