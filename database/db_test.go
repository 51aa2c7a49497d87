package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	cfg := Config{Driver: DriverSQLite, Database: filepath.Join(t.TempDir(), "test.db"), LogLevel: "silent"}
	db, err := Open(context.Background(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_SQLite(t *testing.T) {
	db := openTemp(t)
	if db.Driver() != DriverSQLite {
		t.Errorf("Driver = %q", db.Driver())
	}
	if err := db.PingContext(context.Background()); err != nil {
		t.Errorf("PingContext: %v", err)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", Database: "x"}, nil)
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
}

func TestOpen_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, Config{Driver: DriverSQLite, Database: filepath.Join(t.TempDir(), "x.db")}, nil)
	if errors.IOKindOf(err) != errors.IOKindInterrupted {
		t.Errorf("got %v, want interrupted IO error", err)
	}
}

func TestOpen_MissingDirectoryFails(t *testing.T) {
	cfg := Config{
		Driver:     DriverSQLite,
		Database:   filepath.Join(t.TempDir(), "missing", "dir", "x.db"),
		MaxRetries: 1,
		LogLevel:   "silent",
	}
	_, err := Open(context.Background(), cfg, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := errors.AsAppError(err); !ok {
		t.Errorf("expected AppError, got %T", err)
	}
	if !strings.Contains(err.Error(), "after 1 attempts") {
		t.Errorf("error %q does not report attempts", err.Error())
	}
}

func TestDB_Close_Idempotent(t *testing.T) {
	db := openTemp(t)
	if err := db.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestDB_CreateInsertCount(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	cols := ColumnNames([]string{"id", "first name", "id"})
	if err := db.CreateTextTable(ctx, "people", cols); err != nil {
		t.Fatalf("CreateTextTable: %v", err)
	}
	// second create is a no-op
	if err := db.CreateTextTable(ctx, "people", cols); err != nil {
		t.Fatalf("CreateTextTable again: %v", err)
	}

	rows := []map[string]interface{}{
		{cols[0]: "1", cols[1]: "ada", cols[2]: "x"},
		{cols[0]: "2", cols[1]: "grace", cols[2]: "y"},
	}
	if err := db.InsertRows(ctx, "people", rows); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	n, err := db.CountRows(ctx, "people")
	if err != nil || n != 2 {
		t.Errorf("CountRows = %d, %v; want 2", n, err)
	}

	var name string
	if err := db.WithContext(ctx).Table("people").Where(fmt.Sprintf("%q = ?", "id"), "2").Select(`"first name"`).Scan(&name).Error; err != nil {
		t.Fatalf("select: %v", err)
	}
	if name != "grace" {
		t.Errorf("got %q, want grace", name)
	}
}

func TestDB_CreateTextTable_NoColumns(t *testing.T) {
	db := openTemp(t)
	if err := db.CreateTextTable(context.Background(), "empty", nil); err == nil {
		t.Error("expected an error for a table without columns")
	}
}

func TestDB_InsertRows_Empty(t *testing.T) {
	db := openTemp(t)
	if err := db.InsertRows(context.Background(), "nowhere", nil); err != nil {
		t.Errorf("empty insert should be a no-op, got %v", err)
	}
}

func TestDB_RowsPerInsert(t *testing.T) {
	db := openTemp(t)
	tests := []struct {
		columns, want int
	}{
		{0, 32766},
		{1, 32766},
		{100, 327},
		{1024, 31},
		{40000, 1},
	}
	for _, tt := range tests {
		if got := db.RowsPerInsert(tt.columns); got != tt.want {
			t.Errorf("RowsPerInsert(%d) = %d, want %d", tt.columns, got, tt.want)
		}
	}
	mysql := &DB{cfg: Config{Driver: DriverMySQL}}
	if got := mysql.RowsPerInsert(100); got != 655 {
		t.Errorf("mysql RowsPerInsert(100) = %d, want 655", got)
	}
}

func TestDB_InsertRows_WideTable(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	fields := make([]string, 100)
	for i := range fields {
		fields[i] = fmt.Sprintf("c%d", i)
	}
	cols := ColumnNames(fields)
	if err := db.CreateTextTable(ctx, "wide", cols); err != nil {
		t.Fatal(err)
	}
	rows := make([]map[string]interface{}, 500)
	for r := range rows {
		row := make(map[string]interface{}, len(cols))
		for _, c := range cols {
			row[c] = fmt.Sprintf("%s-%d", c, r)
		}
		rows[r] = row
	}
	if err := db.InsertRows(ctx, "wide", rows); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if n, err := db.CountRows(ctx, "wide"); err != nil || n != 500 {
		t.Errorf("CountRows = %d, %v; want 500", n, err)
	}
}

func TestDB_WithTransaction_Rollback(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	if err := db.CreateTextTable(ctx, "t", []string{"v"}); err != nil {
		t.Fatal(err)
	}
	boom := fmt.Errorf("boom")
	err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Table("t").Create(map[string]interface{}{"v": "1"}).Error; err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Errorf("got %v, want boom", err)
	}
	if n, _ := db.CountRows(ctx, "t"); n != 0 {
		t.Errorf("rows after rollback = %d, want 0", n)
	}
}

func TestColumnNames(t *testing.T) {
	got := ColumnNames([]string{"a", " ", "A", "a", "b"})
	want := []string{"a", "column_2", "A_2", "a_3", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ColumnNames = %v, want %v", got, want)
			break
		}
	}
}
