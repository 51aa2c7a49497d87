package database

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	stdMysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/riv/errors"
)

// Dialector returns the gorm dialector for cfg.Driver.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Database
		}
		return sqlite.Open(dsn), nil

	case DriverMySQL:
		dsn, err := MySQLDSN(cfg)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil

	case DriverPostgres:
		return postgres.Open(PostgresDSN(cfg)), nil

	default:
		return nil, errors.InvalidConfig("driver",
			fmt.Sprintf("unsupported driver %q, supported: sqlite, mysql, postgres", cfg.Driver))
	}
}

// MySQLDSN builds a go-sql-driver DSN from cfg. An explicit DSN is parsed so
// the dial timeout can be filled in when it does not carry one.
func MySQLDSN(cfg Config) (string, error) {
	var mc *stdMysql.Config
	if cfg.DSN != "" {
		parsed, err := stdMysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", errors.InvalidConfig("dsn", err.Error()).WithCause(err)
		}
		mc = parsed
	} else {
		mc = stdMysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Database
	}
	if mc.Timeout == 0 && cfg.DialTimeout != "" {
		mc.Timeout = parseDuration(cfg.DialTimeout, 0)
	}
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}

// PostgresDSN builds a libpq keyword/value DSN from cfg.
func PostgresDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	parts := []string{
		"host=" + cfg.Host,
		"port=" + strconv.Itoa(cfg.Port),
		"dbname=" + cfg.Database,
		"sslmode=" + cfg.SSLMode,
	}
	if cfg.User != "" {
		parts = append(parts, "user="+cfg.User)
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quotePostgres(cfg.Password))
	}
	if d := parseDuration(cfg.DialTimeout, 0); d > 0 {
		secs := int(d.Seconds())
		if secs < 1 {
			secs = 1
		}
		parts = append(parts, "connect_timeout="+strconv.Itoa(secs))
	}
	return strings.Join(parts, " ")
}

func quotePostgres(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
