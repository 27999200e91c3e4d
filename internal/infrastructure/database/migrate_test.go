package database

import (
	"io/fs"
	"strings"
	"testing"

	"go-vaccination-booking/config"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	up := map[string]bool{}
	down := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			up[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			down[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	if len(up) == 0 {
		t.Fatal("no migrations embedded")
	}
	for version := range up {
		if !down[version] {
			t.Errorf("migration %s has no down file", version)
		}
	}
}

func TestInitSchemaGuardsSlotBookings(t *testing.T) {
	body, err := fs.ReadFile(migrationFiles, "migrations/000001_init_schema.up.sql")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	schema := string(body)

	for _, want := range []string{
		"chk_availability_slots_booking CHECK (is_booked = (booked_by IS NOT NULL))",
		"idx_doctor_schedules_doctor_date ON doctor_schedules (doctor_id, schedule_date)",
		"idx_users_email ON users (email)",
		"idx_dose_records_child_vaccine_dose",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema is missing %q", want)
		}
	}
}

func TestConnectionStrings(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: "5432", User: "app", Password: "secret", Name: "vaccination", SSLMode: "disable"}

	if got := DSN(cfg); !strings.Contains(got, "TimeZone=UTC") || !strings.Contains(got, "sslmode=disable") {
		t.Errorf("DSN() = %q", got)
	}
	if got, want := URL(cfg), "pgx5://app:secret@db:5432/vaccination?sslmode=disable"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
