package database

import (
	"fmt"
	"sort"

	"github.com/lonlait/blogicum/models"
	"gorm.io/gorm"
)

// TableDrift lists the columns of one table that no model field accounts for,
// and the model columns the table is missing.
type TableDrift struct {
	Table          string
	UnknownColumns []string
	MissingColumns []string
	TableMissing   bool
}

func (d TableDrift) Clean() bool {
	return !d.TableMissing && len(d.UnknownColumns) == 0 && len(d.MissingColumns) == 0
}

// ColumnReport compares every model against the live schema. Unlike AutoMigrate it
// only reads, so it can run against a production database before deploying.
func ColumnReport(db *gorm.DB) ([]TableDrift, error) {
	migrator := db.Migrator()

	var report []TableDrift
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}

		drift := TableDrift{Table: stmt.Schema.Table}
		if !migrator.HasTable(model) {
			drift.TableMissing = true
			report = append(report, drift)
			continue
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", drift.Table, err)
		}

		modelColumns := map[string]bool{}
		for _, field := range stmt.Schema.Fields {
			if field.DBName != "" && !field.IgnoreMigration {
				modelColumns[field.DBName] = true
			}
		}

		tableColumns := map[string]bool{}
		for _, column := range columnTypes {
			tableColumns[column.Name()] = true
			if !modelColumns[column.Name()] {
				drift.UnknownColumns = append(drift.UnknownColumns, column.Name())
			}
		}

		for column := range modelColumns {
			if !tableColumns[column] {
				drift.MissingColumns = append(drift.MissingColumns, column)
			}
		}

		sort.Strings(drift.UnknownColumns)
		sort.Strings(drift.MissingColumns)
		report = append(report, drift)
	}

	return report, nil
}
