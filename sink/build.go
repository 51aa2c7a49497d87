package sink

import (
	"fmt"

	"github.com/kbukum/riv/errors"
)

// Build validates settings and constructs the matching sink. The sink is
// not initialized.
func Build(settings Settings, opts ...Option) (Sink, error) {
	if settings == nil {
		return nil, errors.InvalidConfig("kind", "sink settings are required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	switch s := settings.(type) {
	case CaptureSettings:
		return NewCaptureSink(opts...), nil
	case ConsoleSettings:
		return NewConsoleSink(opts...), nil
	case DevNullSettings:
		return NewDevNullSink(opts...), nil
	case CsvSettings:
		return NewCsvSink(s, opts...), nil
	case JsonSettings:
		return NewJsonSink(s, opts...), nil
	case SqliteSettings:
		return NewSqliteSink(s, opts...), nil
	case MessageQueueSettings:
		return NewMessageQueueSink(s, opts...), nil
	case RelationalSettings:
		return NewRelationalSink(s, opts...), nil
	default:
		return nil, errors.InvalidConfig("kind", fmt.Sprintf("unsupported sink settings %T", settings))
	}
}
