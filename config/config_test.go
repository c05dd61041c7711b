package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Expected memory driver, got %q", cfg.Database.Driver)
	}
	if cfg.Dungeon.MaxRows != 20 || cfg.Dungeon.MaxCols != 20 || cfg.Dungeon.MinSubgraph != 2 {
		t.Errorf("Unexpected grid defaults: %+v", cfg.Dungeon)
	}
	if cfg.Dungeon.TickInterval != 100*time.Millisecond {
		t.Errorf("Expected 100ms tick, got %v", cfg.Dungeon.TickInterval)
	}
	if cfg.Dungeon.OccupantCapacity != 100 {
		t.Errorf("Expected capacity 100, got %d", cfg.Dungeon.OccupantCapacity)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
server:
  http_address: ":7000"
database:
  driver: gorm
  postgres:
    user: alice
dungeon:
  seed: 42
  start_floor: 3
  tick_interval: 50ms
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.HTTPAddress != ":7000" || cfg.Server.RPCAddress != ":8081" {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
	if cfg.Database.Driver != DriverGorm || cfg.Database.Postgres.User != "alice" || cfg.Database.Postgres.Port != 5432 {
		t.Errorf("Unexpected database config: %+v", cfg.Database)
	}
	if cfg.Dungeon.Seed != 42 || cfg.Dungeon.StartFloor != 3 || cfg.Dungeon.TickInterval != 50*time.Millisecond {
		t.Errorf("Unexpected dungeon config: %+v", cfg.Dungeon)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("DUNGEON_DUNGEON_SEED", "7")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Dungeon.Seed != 7 {
		t.Errorf("Expected seed 7 from the environment, got %d", cfg.Dungeon.Seed)
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "d"}
	want := "host=db port=5433 user=u password=p dbname=d sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
