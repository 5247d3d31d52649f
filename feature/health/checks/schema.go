package checks

import (
	"fmt"
	"reflect"
	"strings"

	"user-import/core/database"
	"user-import/feature/userimport/store"

	"gorm.io/gorm"
)

// Table statuses.
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusAbsent = "absent"
)

// SchemaReport is the result of comparing the import tables with their models.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport lists the problems of one table.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"`
}

// CheckSchema verifies the import tables using the GORM models as the source of truth.
// A table that does not exist yet is reported as absent, which is not a mismatch:
// it is created by the first import.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, model := range []any{store.ImportedUser{}, store.ResolverDefinition{}} {
		tableName, expected := modelColumns(model)

		exists, err := database.TableExists(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			report.Matched = false
			continue
		}
		if !exists {
			report.Tables[tableName] = TableReport{MissingColumns: []string{}, Status: StatusAbsent}
			continue
		}

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}
		actual := make(map[string]bool, len(actualCols))
		for _, col := range actualCols {
			actual[col.Field] = true
		}

		tbl := TableReport{MissingColumns: []string{}, Status: StatusOK}
		for _, col := range expected {
			if !actual[col] {
				tbl.MissingColumns = append(tbl.MissingColumns, col)
				tbl.Status = StatusError
				report.Matched = false
			}
		}
		report.Tables[tableName] = tbl
	}

	return report, nil
}

// modelColumns returns the table name and the gorm column names of model.
func modelColumns(model any) (string, []string) {
	t := reflect.TypeOf(model)
	tableName := ""
	if tabler, ok := reflect.New(t).Interface().(interface{ TableName() string }); ok {
		tableName = tabler.TableName()
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		if col := parseGormColumn(t.Field(i).Tag.Get("gorm")); col != "" {
			cols = append(cols, col)
		}
	}
	return tableName, cols
}

func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}
