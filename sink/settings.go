package sink

import (
	"net"
	"strconv"

	"github.com/kbukum/riv/config"
	"github.com/kbukum/riv/database"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/kafka"
	"github.com/kbukum/riv/validation"
)

// Settings is the typed configuration of one sink kind.
type Settings interface {
	Kind() Kind
	// CanPublish reports whether the sink writes to a durable destination.
	CanPublish() bool
	Validate() error
}

// CaptureSettings keeps accepted atoms in memory.
type CaptureSettings struct{}

func (CaptureSettings) Kind() Kind       { return Capture }
func (CaptureSettings) CanPublish() bool { return false }
func (CaptureSettings) Validate() error  { return nil }

// ConsoleSettings prints one line per atom.
type ConsoleSettings struct{}

func (ConsoleSettings) Kind() Kind       { return Console }
func (ConsoleSettings) CanPublish() bool { return false }
func (ConsoleSettings) Validate() error  { return nil }

// DevNullSettings discards everything.
type DevNullSettings struct{}

func (DevNullSettings) Kind() Kind       { return DevNull }
func (DevNullSettings) CanPublish() bool { return false }
func (DevNullSettings) Validate() error  { return nil }

// CsvSettings writes a delimited file.
type CsvSettings struct {
	Path string `mapstructure:"path" validate:"required"`
	// Delimiter is a single byte; ";" by default so the output reads back
	// with the default source settings.
	Delimiter string `mapstructure:"delimiter" validate:"omitempty,single_byte"`
}

func (CsvSettings) Kind() Kind        { return Csv }
func (CsvSettings) CanPublish() bool  { return true }
func (s CsvSettings) Validate() error { return validation.Validate(&s) }

// DelimiterRune returns the delimiter, ';' when unset.
func (s CsvSettings) DelimiterRune() rune {
	if len(s.Delimiter) == 1 {
		return rune(s.Delimiter[0])
	}
	return ';'
}

// JsonSettings writes a JSON array with one object per record.
type JsonSettings struct {
	Path   string `mapstructure:"path" validate:"required"`
	Pretty bool   `mapstructure:"pretty"`
}

func (JsonSettings) Kind() Kind        { return Json }
func (JsonSettings) CanPublish() bool  { return true }
func (s JsonSettings) Validate() error { return validation.Validate(&s) }

// SqliteSettings writes records into a table of a sqlite file.
type SqliteSettings struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
	Table  string `mapstructure:"table" validate:"required,identifier"`
}

func (SqliteSettings) Kind() Kind        { return Sqlite }
func (SqliteSettings) CanPublish() bool  { return true }
func (s SqliteSettings) Validate() error { return validation.Validate(&s) }

func (s SqliteSettings) database() database.Config {
	return database.Config{Driver: database.DriverSQLite, Database: s.DBPath, MaxRetries: 1}
}

// MessageQueueSettings publishes one JSON message per record to a Kafka topic.
type MessageQueueSettings struct {
	Server string `mapstructure:"server" validate:"required"`
	Port   int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Topic  string `mapstructure:"topic" validate:"required"`
	// Kafka tunes the producer; Brokers and Topic are taken from above.
	Kafka kafka.Config `mapstructure:"kafka"`
}

func (MessageQueueSettings) Kind() Kind        { return MessageQueue }
func (MessageQueueSettings) CanPublish() bool  { return true }
func (s MessageQueueSettings) Validate() error { return validation.Validate(&s) }

func (s MessageQueueSettings) producer() kafka.Config {
	cfg := s.Kafka
	cfg.Brokers = []string{net.JoinHostPort(s.Server, strconv.Itoa(s.Port))}
	cfg.Topic = s.Topic
	return cfg
}

// RelationalSettings writes records into a table of a mysql, postgres or
// sqlite database.
type RelationalSettings struct {
	Driver   string `mapstructure:"driver" validate:"required,oneof=mysql postgres sqlite"`
	Server   string `mapstructure:"server"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" validate:"required"`
	Table    string `mapstructure:"table" validate:"required,identifier"`
	// Tracing records every statement as an OpenTelemetry span.
	Tracing bool `mapstructure:"tracing"`
}

func (RelationalSettings) Kind() Kind        { return Relational }
func (RelationalSettings) CanPublish() bool  { return true }
func (s RelationalSettings) Validate() error { return validation.Validate(&s) }

func (s RelationalSettings) database() database.Config {
	return database.Config{
		Driver:   s.Driver,
		Host:     s.Server,
		Port:     s.Port,
		User:     s.User,
		Password: s.Password,
		Database: s.Database,
		Tracing:  s.Tracing,
	}
}

// DefaultTable receives records when a database sink names no table.
const DefaultTable = "records"

// Config is the file form of a sink: a kind name plus the union of every
// kind's settings. Settings picks the fields that apply.
type Config struct {
	Kind      string `mapstructure:"kind" validate:"required"`
	Path      string `mapstructure:"path"`
	Delimiter string `mapstructure:"delimiter"`
	Pretty    bool   `mapstructure:"pretty"`
	Table     string `mapstructure:"table"`
	Server    string `mapstructure:"server"`
	Port      int    `mapstructure:"port"`
	Topic     string `mapstructure:"topic"`
	Driver    string `mapstructure:"driver"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Database  string `mapstructure:"database"`
	Tracing   bool   `mapstructure:"tracing"`

	Kafka kafka.Config `mapstructure:"kafka"`

	config.Values `mapstructure:",remain"`
}

// Settings converts the file form into typed, validated settings.
func (c Config) Settings() (Settings, error) {
	k, ok := ParseKind(c.Kind)
	if !ok {
		return nil, errors.InvalidConfig("kind", "unknown sink kind "+strconv.Quote(c.Kind))
	}
	table := c.Table
	if table == "" {
		table = DefaultTable
	}
	var s Settings
	switch k {
	case Capture:
		s = CaptureSettings{}
	case Console:
		s = ConsoleSettings{}
	case DevNull:
		s = DevNullSettings{}
	case Csv:
		s = CsvSettings{Path: c.Path, Delimiter: c.Delimiter}
	case Json:
		s = JsonSettings{Path: c.Path, Pretty: c.Pretty}
	case Sqlite:
		s = SqliteSettings{DBPath: c.Path, Table: table}
	case MessageQueue:
		s = MessageQueueSettings{Server: c.Server, Port: c.Port, Topic: c.Topic, Kafka: c.Kafka}
	case Relational:
		s = RelationalSettings{
			Driver:   c.Driver,
			Server:   c.Server,
			Port:     c.Port,
			User:     c.User,
			Password: c.Password,
			Database: c.Database,
			Table:    table,
			Tracing:  c.Tracing,
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
