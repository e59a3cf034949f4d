package migrations

import (
	"testing"
	"testing/fstest"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestLoadSortsAndPairsDown(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0002_b.up.sql":   {Data: []byte("CREATE TABLE b ();")},
		"sql/0001_a.up.sql":   {Data: []byte("CREATE TABLE a ();")},
		"sql/0001_a.down.sql": {Data: []byte("DROP TABLE a;")},
	}
	got, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].Version != 1 || got[1].Version != 2 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Down != "DROP TABLE a;" || got[1].Down != "" {
		t.Fatalf("unexpected down scripts: %+v", got)
	}
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	got, err := Load(files)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) < 2 || got[0].Name != "auth" {
		t.Fatalf("unexpected embedded migrations: %+v", got)
	}
}

func TestRunMigrationsSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS daily_readings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs(2, "daily_readings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestParseMigrationFilenameRejectsGarbage(t *testing.T) {
	if _, _, err := parseMigrationFilename("nounderscore.up.sql"); err == nil {
		t.Fatalf("expected error")
	}
	if _, _, err := parseMigrationFilename("abc_x.up.sql"); err == nil {
		t.Fatalf("expected error")
	}
}
