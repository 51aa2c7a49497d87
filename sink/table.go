package sink

import (
	"context"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/database"
	"github.com/kbukum/riv/logger"
)

// tableBatchSize is the number of rows buffered before an insert.
const tableBatchSize = 500

// TableSink writes records into a database table with one TEXT column per
// header field. The table is created when the header arrives. It backs
// both the sqlite and the relational sink kinds.
type TableSink struct {
	lifecycle
	dbCfg   database.Config
	table   string
	db      *database.DB
	schema  schema
	pending []map[string]interface{}
}

var _ Sink = (*TableSink)(nil)

// NewSqliteSink creates a sink writing to a sqlite file.
func NewSqliteSink(settings SqliteSettings, opts ...Option) *TableSink {
	return newTableSink(Sqlite, settings.database(), settings.Table, opts)
}

// NewRelationalSink creates a sink writing to a mysql, postgres or sqlite
// database.
func NewRelationalSink(settings RelationalSettings, opts ...Option) *TableSink {
	return newTableSink(Relational, settings.database(), settings.Table, opts)
}

func newTableSink(k Kind, cfg database.Config, table string, opts []Option) *TableSink {
	o := buildOptions(k, opts)
	o.log = o.log.WithFields(logger.Fields("table", table))
	return &TableSink{lifecycle: newLifecycle(k, o), dbCfg: cfg, table: table}
}

// Table returns the destination table name.
func (s *TableSink) Table() string { return s.table }

func (s *TableSink) Initialize(ctx context.Context) error {
	if err := s.open(); err != nil {
		return err
	}
	db, err := database.Open(ctx, s.dbCfg, s.log)
	if err != nil {
		return s.reject(err)
	}
	s.db = db
	s.schema = schema{}
	s.pending = nil
	return nil
}

func (s *TableSink) Accept(ctx context.Context, a atom.Atom) error {
	if handled, err := s.guard(a); handled {
		return err
	}
	switch v := a.(type) {
	case *atom.HeaderRow:
		return s.header(ctx, v.Row.Fields())
	case *atom.Comment, *atom.BlankLine:
		return nil
	}

	nv, err := s.schema.record(a)
	if err != nil {
		return s.fail(err)
	}
	row := make(map[string]interface{}, nv.Len())
	for i := 0; i < nv.Len(); i++ {
		p, _ := nv.At(i)
		row[p.Name] = p.Value
		s.metrics.AddBytes(uint64(len(p.Value)))
	}
	s.pending = append(s.pending, row)
	if len(s.pending) >= tableBatchSize {
		if err := s.flush(ctx); err != nil {
			return s.fail(err)
		}
	}
	return nil
}

func (s *TableSink) header(ctx context.Context, fields []string) error {
	if err := s.flush(ctx); err != nil {
		return s.fail(err)
	}
	if err := s.schema.setHeader(fields); err != nil {
		return s.fail(err)
	}
	if err := s.db.CreateTextTable(ctx, s.table, s.schema.columns); err != nil {
		return s.fail(database.FromDatabase(err, s.table))
	}
	return nil
}

// flush inserts the buffered rows. Rows count as records once committed.
func (s *TableSink) flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.db.InsertRows(ctx, s.table, s.pending); err != nil {
		s.pending = nil
		return database.FromDatabase(err, s.table)
	}
	s.metrics.AddRecords(uint64(len(s.pending)))
	s.pending = nil
	return nil
}

func (s *TableSink) Close(ctx context.Context) {
	if !s.shut() {
		return
	}
	if err := s.flush(ctx); err != nil {
		s.logSecondary("flushing rows failed", err)
	}
	if err := s.db.Close(); err != nil {
		s.logSecondary("closing database failed", err)
	}
	s.logClosed()
}
