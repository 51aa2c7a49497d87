package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/riv/logger"
)

// ColumnNames turns header fields into usable column names. Blank names
// become column_N (1-based) and repeated names get a _2, _3 suffix.
func ColumnNames(fields []string) []string {
	out := make([]string, len(fields))
	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimSpace(f)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for seen[strings.ToLower(name)] > 0 {
			seen[strings.ToLower(base)]++
			name = fmt.Sprintf("%s_%d", base, seen[strings.ToLower(base)])
		}
		seen[strings.ToLower(name)]++
		out[i] = name
	}
	return out
}

// CreateTextTable creates table with one TEXT column per name unless it
// already exists. Identifiers are quoted by the dialector.
func (d *DB) CreateTextTable(ctx context.Context, table string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("table %s needs at least one column", table)
	}
	defs := make([]string, len(columns))
	vars := make([]interface{}, 0, len(columns)+1)
	vars = append(vars, clause.Table{Name: table})
	for i, c := range columns {
		defs[i] = "? TEXT"
		vars = append(vars, clause.Column{Name: c})
	}
	sql := fmt.Sprintf("CREATE TABLE IF NOT EXISTS ? (%s)", strings.Join(defs, ", "))
	if err := d.GormDB.WithContext(ctx).Exec(sql, vars...).Error; err != nil {
		return err
	}
	d.log.Debug("Table ready", logger.Fields("table", table, "columns", len(columns)))
	return nil
}

// Bind variable ceilings per statement.
const (
	maxSQLiteVars = 32766
	maxServerVars = 65535
)

// RowsPerInsert is the largest number of rows of the given width that fit
// in one INSERT without exceeding the driver's bind variable limit.
func (d *DB) RowsPerInsert(columns int) int {
	limit := maxServerVars
	if d.cfg.Driver == DriverSQLite {
		limit = maxSQLiteVars
	}
	return max(1, limit/max(1, columns))
}

// InsertRows writes rows into table in one transaction, split into as
// many INSERT statements as the bind variable limit requires.
func (d *DB) InsertRows(ctx context.Context, table string, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	n := d.RowsPerInsert(len(rows[0]))
	return d.WithTransaction(ctx, func(tx *gorm.DB) error {
		for start := 0; start < len(rows); start += n {
			end := min(start+n, len(rows))
			if err := tx.Table(table).Create(rows[start:end]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountRows returns the number of rows in table.
func (d *DB) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := d.GormDB.WithContext(ctx).Table(table).Count(&n).Error
	return n, err
}
