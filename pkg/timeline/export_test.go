package timeline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/state"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func rec(key string, start time.Duration, elapsed int) *state.Record {
	return &state.Record{
		Key:            key,
		StartTime:      baseTime.Add(start),
		EndTime:        baseTime.Add(start + time.Duration(elapsed)*time.Second),
		Complete:       elapsed > 0,
		ElapsedSeconds: elapsed,
	}
}

func TestBuild(t *testing.T) {
	records := []*state.Record{
		rec("module.a", 0, 5),
		rec("module.b", 10*time.Second, 30),
		rec("module.c", 5*time.Second, 10),
		rec("module.d", 2*time.Second, 11),
	}

	exp := Build(records, 10)

	if len(exp.Items) != 2 || len(exp.Groups) != 2 {
		t.Fatalf("Items, Groups = %d, %d; want 2, 2", len(exp.Items), len(exp.Groups))
	}

	want := []Item{
		{ID: 0, Group: 0, Title: "module.b", StartTime: baseTime.Add(10 * time.Second), EndTime: baseTime.Add(40 * time.Second), ParsedTime: 30},
		{ID: 1, Group: 1, Title: "module.d", StartTime: baseTime.Add(2 * time.Second), EndTime: baseTime.Add(13 * time.Second), ParsedTime: 11},
	}
	for i, w := range want {
		got := exp.Items[i]
		if got.ID != w.ID || got.Group != w.Group || got.Title != w.Title || got.ParsedTime != w.ParsedTime ||
			!got.StartTime.Equal(w.StartTime) || !got.EndTime.Equal(w.EndTime) {
			t.Errorf("Items[%d] = %+v, want %+v", i, got, w)
		}
		if exp.Groups[i] != (Group{ID: w.ID, Title: w.Title}) {
			t.Errorf("Groups[%d] = %+v", i, exp.Groups[i])
		}
	}
}

func TestBuild_NothingOverLimit(t *testing.T) {
	exp := Build([]*state.Record{rec("module.a", 0, 3)}, 10)
	if exp.Items == nil || exp.Groups == nil {
		t.Fatal("empty export should hold empty, non-nil slices")
	}
	if len(exp.Items) != 0 {
		t.Errorf("Items = %d, want 0", len(exp.Items))
	}
}

func TestExport_WriteAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "client", "src")
	exp := Build([]*state.Record{rec("module.a", 0, 20), rec("module.b", time.Second, 40)}, 10)

	paths, err := exp.Write(dir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != ItemsFile || filepath.Base(paths[1]) != GroupsFile {
		t.Errorf("paths = %v", paths)
	}

	data, err := os.ReadFile(filepath.Join(dir, ItemsFile))
	if err != nil {
		t.Fatal(err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("result.json is not JSON: %v", err)
	}
	for _, field := range []string{"id", "group", "title", "start_time", "end_time", "parsedTime"} {
		if _, ok := raw[0][field]; !ok {
			t.Errorf("result.json item missing %q: %v", field, raw[0])
		}
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Items) != 2 || loaded.Items[1].Title != "module.b" || loaded.Groups[1].ID != 1 {
		t.Errorf("Load() = %+v", loaded)
	}
}

func TestLoad_NoData(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Load() error = %v, want ErrNoData", err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ItemsFile), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if err == nil || errors.Is(err, ErrNoData) {
		t.Errorf("Load() error = %v, want decode error", err)
	}
}
