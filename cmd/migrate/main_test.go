package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/dvloznov/hikmacash/migrations"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

var nopLog = zerolog.New(io.Discard)

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_init_schema_migrations.sql", true, "0001", "init_schema_migrations"},
		{"001_invalid.sql", false, "", ""},
		{"0001_test", false, "", ""},
		{"0001.sql", false, "", ""},
		{"invalid_0001_test.sql", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := migrationPattern.FindStringSubmatch(tt.filename)
			if (matches != nil) != tt.valid {
				t.Fatalf("match = %v, want %v", matches != nil, tt.valid)
			}
			if tt.valid && (matches[1] != tt.version || matches[2] != tt.name) {
				t.Errorf("got version %q name %q", matches[1], matches[2])
			}
		})
	}
}

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"bq/0002_add_index.sql": {Data: []byte("ALTER TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.t` ADD COLUMN x INT64;")},
		"bq/0001_init.sql":      {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.t` (id STRING);")},
		"bq/README.md":          {Data: []byte("notes")},
	}

	got, err := readMigrations(fsys, "bq", map[string]string{"PROJECT_ID": "p", "DATASET_ID": "d"}, nopLog)
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}

	if len(got) != 2 || got[0].Version != 1 || got[1].Version != 2 {
		t.Fatalf("versions = %+v", got)
	}
	if want := "CREATE TABLE `p.d.t` (id STRING);"; got[0].SQL != want {
		t.Errorf("SQL = %q, want %q", got[0].SQL, want)
	}
	if got[0].Checksum != checksum(fsys["bq/0001_init.sql"].Data) {
		t.Error("checksum must be taken over the unrendered file")
	}
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("SELECT 1;")},
		"m/0001_b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := readMigrations(fsys, "m", nil, nopLog); err == nil {
		t.Error("expected error for duplicate version")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, backend := range []string{"postgres", "bigquery"} {
		t.Run(backend, func(t *testing.T) {
			list, err := readMigrations(migrations.FS, backend, map[string]string{"PROJECT_ID": "p", "DATASET_ID": "d"}, nopLog)
			if err != nil {
				t.Fatalf("readMigrations() error = %v", err)
			}
			if len(list) == 0 || list[0].Version != 1 {
				t.Fatalf("expected migrations starting at version 1, got %+v", list)
			}
		})
	}
}

func TestMigrationChecksumConsistency(t *testing.T) {
	a := checksum([]byte("CREATE TABLE test (id INT64);"))
	b := checksum([]byte("CREATE TABLE test (id INT64);"))
	c := checksum([]byte("CREATE TABLE different (id INT64);"))

	if a != b {
		t.Error("same content should produce the same checksum")
	}
	if a == c {
		t.Error("different content should produce different checksums")
	}
}

type fakeTarget struct {
	applied   []AppliedMigration
	ran       []int
	failOn    int
	ensureErr error
}

func (f *fakeTarget) ensureSchemaMigrationsTable(context.Context) error { return f.ensureErr }

func (f *fakeTarget) appliedMigrations(context.Context) ([]AppliedMigration, error) {
	return f.applied, nil
}

func (f *fakeTarget) apply(_ context.Context, m Migration, _ string) error {
	if m.Version == f.failOn {
		return errors.New("syntax error")
	}
	f.ran = append(f.ran, m.Version)
	return nil
}

func TestRun(t *testing.T) {
	list := []Migration{
		{Version: 1, Name: "init", Checksum: "c1"},
		{Version: 2, Name: "index", Checksum: "c2"},
		{Version: 3, Name: "more", Checksum: "c3"},
	}

	tests := []struct {
		name      string
		target    *fakeTarget
		wantCount int
		wantRan   []int
		wantErr   bool
	}{
		{
			name:      "fresh database",
			target:    &fakeTarget{},
			wantCount: 3,
			wantRan:   []int{1, 2, 3},
		},
		{
			name:      "skips applied",
			target:    &fakeTarget{applied: []AppliedMigration{{Version: 1, Checksum: "c1"}, {Version: 2}}},
			wantCount: 1,
			wantRan:   []int{3},
		},
		{
			name:    "modified after apply",
			target:  &fakeTarget{applied: []AppliedMigration{{Version: 1, Checksum: "old"}}},
			wantErr: true,
		},
		{
			name:      "stops at failure",
			target:    &fakeTarget{failOn: 2},
			wantCount: 1,
			wantRan:   []int{1},
			wantErr:   true,
		},
		{
			name:    "ensure table fails",
			target:  &fakeTarget{ensureErr: errors.New("permission denied")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := run(context.Background(), tt.target, list, "test", nopLog)
			if (err != nil) != tt.wantErr {
				t.Fatalf("run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if n != tt.wantCount {
				t.Errorf("applied = %d, want %d", n, tt.wantCount)
			}
			if diff := cmp.Diff(tt.wantRan, tt.target.ran); diff != "" {
				t.Errorf("ran mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
