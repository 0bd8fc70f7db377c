package database_test

import (
	"testing"

	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/database/dbtest"
)

func TestColumnReportOnMigratedSchemaIsClean(t *testing.T) {
	db := dbtest.NewSQLite(t)

	report, err := database.ColumnReport(db)
	if err != nil {
		t.Fatalf("column report: %v", err)
	}
	if len(report) != 5 {
		t.Fatalf("expected one entry per model, got %d", len(report))
	}
	for _, drift := range report {
		if !drift.Clean() {
			t.Fatalf("expected %s to match its model, got %+v", drift.Table, drift)
		}
	}
}

func TestColumnReportFindsDrift(t *testing.T) {
	db := dbtest.NewSQLite(t)

	if err := db.Exec("ALTER TABLE locations ADD COLUMN legacy_code TEXT").Error; err != nil {
		t.Fatalf("add column: %v", err)
	}
	if err := db.Exec("DROP TABLE comments").Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	report, err := database.ColumnReport(db)
	if err != nil {
		t.Fatalf("column report: %v", err)
	}

	byTable := map[string]database.TableDrift{}
	for _, drift := range report {
		byTable[drift.Table] = drift
	}

	locations := byTable["locations"]
	if len(locations.UnknownColumns) != 1 || locations.UnknownColumns[0] != "legacy_code" {
		t.Fatalf("expected legacy_code to be reported, got %+v", locations)
	}
	if !byTable["comments"].TableMissing {
		t.Fatalf("expected comments to be reported missing")
	}
	if !byTable["posts"].Clean() {
		t.Fatalf("expected posts to be clean, got %+v", byTable["posts"])
	}
}
