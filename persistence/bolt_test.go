package persistence

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/wfunc/dungeonfloor/config"
	"github.com/wfunc/dungeonfloor/models"
)

func TestBolt_SaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floors.db")
	store, err := NewBolt(path)
	if err != nil {
		t.Fatalf("NewBolt failed: %v", err)
	}

	for floor := 0; floor < 12; floor++ {
		rec := &models.FloorRecord{
			RunID: "run-1",
			Floor: floor,
			Seed:  3,
			Rooms: map[string]int{"Key": 1},
			Dump:  "00. |O|\n",
		}
		if err := store.SaveFloorRecord(rec); err != nil {
			t.Fatalf("SaveFloorRecord failed: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = NewBolt(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer store.Close()

	records, err := store.LoadFloorRecords("run-1")
	if err != nil {
		t.Fatalf("LoadFloorRecords failed: %v", err)
	}
	if len(records) != 12 {
		t.Fatalf("Expected 12 records, got %d", len(records))
	}
	for i, r := range records {
		if r.Floor != i || r.Rooms["Key"] != 1 || r.Dump != "00. |O|\n" {
			t.Errorf("Record %d out of order or damaged: %+v", i, r)
		}
	}

	summary, err := store.LoadRunSummary("run-1")
	if err != nil {
		t.Fatalf("LoadRunSummary failed: %v", err)
	}
	if summary.Floors != 12 || summary.Deepest != 11 || summary.Seed != 3 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestBolt_UnknownRun(t *testing.T) {
	store, err := NewBolt(filepath.Join(t.TempDir(), "floors.db"))
	if err != nil {
		t.Fatalf("NewBolt failed: %v", err)
	}
	defer store.Close()

	if _, err := store.LoadFloorRecords("missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
	if _, err := store.LoadRunSummary("missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestOpen_Bolt(t *testing.T) {
	store, err := Open(config.DatabaseConfig{
		Driver: config.DriverBolt,
		Bolt:   config.BoltConfig{Path: filepath.Join(t.TempDir(), "floors.db")},
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*Bolt); !ok {
		t.Errorf("Expected *Bolt, got %T", store)
	}
}
