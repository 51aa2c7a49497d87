package database

import (
	"strings"
	"testing"

	"github.com/kbukum/riv/errors"
)

func TestMySQLDSN_FromFields(t *testing.T) {
	cfg := Config{Driver: DriverMySQL, Host: "db", User: "etl", Password: "pw", Database: "warehouse", DialTimeout: "3s"}
	cfg.ApplyDefaults()
	dsn, err := MySQLDSN(cfg)
	if err != nil {
		t.Fatalf("MySQLDSN: %v", err)
	}
	for _, want := range []string{"etl:pw@tcp(db:3306)/warehouse", "timeout=3s", "parseTime=true"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestMySQLDSN_ExplicitKeepsTimeout(t *testing.T) {
	cfg := Config{Driver: DriverMySQL, DSN: "u:p@tcp(h:1)/d?timeout=7s", DialTimeout: "3s"}
	dsn, err := MySQLDSN(cfg)
	if err != nil {
		t.Fatalf("MySQLDSN: %v", err)
	}
	if !strings.Contains(dsn, "timeout=7s") {
		t.Errorf("dsn %q lost the explicit timeout", dsn)
	}
}

func TestMySQLDSN_Invalid(t *testing.T) {
	_, err := MySQLDSN(Config{Driver: DriverMySQL, DSN: "not a dsn"})
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{Driver: DriverPostgres, Host: "pg", User: "etl", Password: "it's", Database: "w", DialTimeout: "500ms"}
	cfg.ApplyDefaults()
	got := PostgresDSN(cfg)
	for _, want := range []string{"host=pg", "port=5432", "dbname=w", "sslmode=disable", "user=etl", `password='it\'s'`, "connect_timeout=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %q", got, want)
		}
	}
}

func TestDialector_Unsupported(t *testing.T) {
	_, err := Dialector(Config{Driver: "oracle"})
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
}

func TestDialector_Names(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverMySQL, DriverPostgres} {
		cfg := Config{Driver: driver, Database: "x"}
		cfg.ApplyDefaults()
		d, err := Dialector(cfg)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if d.Name() != driver {
			t.Errorf("Name = %q, want %q", d.Name(), driver)
		}
	}
}
