package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("up = %d, down = %d, want matching non-zero pairs", up, down)
	}
}

func TestInitMigrationCreatesEveryTable(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	if err != nil {
		t.Fatal(err)
	}

	for _, table := range []string{
		"role_assignments",
		"patient_profiles",
		"providers",
		"fitness_listings",
		"membership_plans",
		"consultations",
		"consultation_events",
	} {
		if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("init migration does not create %s", table)
		}
	}
}

func TestRollbackRejectsNonPositiveSteps(t *testing.T) {
	if err := Rollback("postgres://unused", 0); err == nil {
		t.Error("Rollback(0) succeeded")
	}
}
