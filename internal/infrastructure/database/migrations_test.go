package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20261001_090000_create_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);")},
		"20261001_090000_create_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
		"20261002_090000_add_tags.up.sql":       {Data: []byte("CREATE TABLE tags (name TEXT PRIMARY KEY);")},
		"README.md":                             {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	src := testMigrations()

	if err := db.Migrate(ctx, src); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for _, table := range []string{"notes", "tags"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s not created", table)
		}
	}

	applied, pending, err := db.MigrationStatus(ctx, src)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied/pending = %d/%d, want 2/0", len(applied), len(pending))
	}
	if applied[0].Version != "20261001_090000" {
		t.Errorf("applied[0] = %s, want 20261001_090000", applied[0].Version)
	}

	if err := db.Migrate(ctx, src); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateStopsAtFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	src := fstest.MapFS{
		"20261001_090000_ok.up.sql":    {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"20261002_090000_bad.up.sql":   {Data: []byte("CREATE TABLE nope (")},
		"20261003_090000_later.up.sql": {Data: []byte("CREATE TABLE later (id INTEGER);")},
	}

	if err := db.Migrate(ctx, src); err == nil {
		t.Fatal("Migrate() should fail on the bad migration")
	}
	if !tableExists(t, db, "ok") {
		t.Error("migration before the failure should stay applied")
	}
	if tableExists(t, db, "later") {
		t.Error("migration after the failure should not run")
	}
	_, pending, err := db.MigrationStatus(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	src := fstest.MapFS{
		"20261001_090000_create_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER);")},
		"20261001_090000_create_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
	}

	if err := db.Migrate(ctx, src); err != nil {
		t.Fatal(err)
	}
	if err := db.MigrateDown(ctx, src); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "notes") {
		t.Error("notes should be dropped")
	}
	applied, _, err := db.MigrationStatus(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %d, want 0", len(applied))
	}

	if err := db.MigrateDown(ctx, src); err != nil {
		t.Errorf("MigrateDown() with nothing applied error = %v", err)
	}
}

func TestMigrateDownWithoutDownSQL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	src := fstest.MapFS{
		"20261002_090000_add_tags.up.sql": {Data: []byte("CREATE TABLE tags (name TEXT);")},
	}
	if err := db.Migrate(ctx, src); err != nil {
		t.Fatal(err)
	}
	if err := db.MigrateDown(ctx, src); err == nil {
		t.Error("MigrateDown() should fail without down SQL")
	}
}

func TestMigrateNilSource(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background(), nil); err != nil {
		t.Errorf("Migrate(nil) error = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"20261019_120000_zone_journal.up.sql", "20261019_120000", true, true},
		{"20261019_120000_zone_journal.down.sql", "20261019_120000", false, true},
		{"readme.txt", "", false, false},
		{"20261019_120000_zone_journal.sql", "", false, false},
		{"invalid.up.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, up, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if up != tt.wantUp {
				t.Errorf("isUp = %v, want %v", up, tt.wantUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := map[string]string{
		"20261019_120000_zone_journal.up.sql":    "zone_journal",
		"20261019_120000_zone_journal.down.sql":  "zone_journal",
		"20261001_090000_add_request_log.up.sql": "add_request_log",
	}
	for in, want := range tests {
		if got := extractMigrationName(in); got != want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", in, got, want)
		}
	}
}
