package metrics

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Status is the lifecycle state reported by a pipeline component.
type Status int

const (
	Idle Status = iota
	Active
	Completed
	Failed
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status by name for JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	for _, st := range []Status{Idle, Active, Completed, Failed} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// ComponentMetrics is a snapshot of counters for one pipeline stage.
// An ID of 0 marks an aggregate built by Combine or Sum.
type ComponentMetrics struct {
	ID           uint32        `json:"id"`
	Status       Status        `json:"status"`
	Duration     time.Duration `json:"duration"`
	MessageCount uint64        `json:"message_count"`
	ByteCount    uint64        `json:"byte_count"`
	RecordCount  uint64        `json:"record_count"`
	ErrorCount   uint64        `json:"error_count"`
}

// ProvidesMetrics is implemented by sources, relays and sinks.
type ProvidesMetrics interface {
	Metrics() ComponentMetrics
}

// New returns idle metrics for the component with the given id.
func New(id uint32) ComponentMetrics {
	return ComponentMetrics{ID: id, Status: Idle}
}

func (m *ComponentMetrics) Activate() { m.Status = Active }
func (m *ComponentMetrics) Complete() { m.Status = Completed }
func (m *ComponentMetrics) Fail()     { m.Status = Failed }

// Reset zeroes the duration and counters. ID and Status are kept.
func (m *ComponentMetrics) Reset() *ComponentMetrics {
	m.Duration = 0
	m.MessageCount = 0
	m.ByteCount = 0
	m.RecordCount = 0
	m.ErrorCount = 0
	return m
}

func (m *ComponentMetrics) SetDuration(d time.Duration) *ComponentMetrics {
	m.Duration = d
	return m
}

func (m *ComponentMetrics) AddBytes(n uint64) *ComponentMetrics {
	m.ByteCount += n
	return m
}

func (m *ComponentMetrics) IncrementMessages() *ComponentMetrics {
	m.MessageCount++
	return m
}

func (m *ComponentMetrics) AddRecords(n uint64) *ComponentMetrics {
	m.RecordCount += n
	return m
}

func (m *ComponentMetrics) IncrementErrors() *ComponentMetrics {
	m.ErrorCount++
	return m
}

// MessagesPerSecond is false when no time elapsed or no messages were seen.
func (m ComponentMetrics) MessagesPerSecond() (float64, bool) {
	return perSecond(float64(m.MessageCount), m.Duration)
}

// RecordsPerSecond is false when no time elapsed or no records were seen.
func (m ComponentMetrics) RecordsPerSecond() (float64, bool) {
	return perSecond(float64(m.RecordCount), m.Duration)
}

// ThroughputMBPerSec reports MiB per second.
func (m ComponentMetrics) ThroughputMBPerSec() (float64, bool) {
	return perSecond(float64(m.ByteCount)/(1024*1024), m.Duration)
}

// ErrorRate is errors per record, false when no records were seen.
func (m ComponentMetrics) ErrorRate() (float64, bool) {
	if m.RecordCount == 0 {
		return 0, false
	}
	return float64(m.ErrorCount) / float64(m.RecordCount), true
}

// HumanBytes renders ByteCount with IEC units, e.g. "1.5 MiB".
func (m ComponentMetrics) HumanBytes() string {
	return humanize.IBytes(m.ByteCount)
}

// String summarizes the snapshot on one line.
func (m ComponentMetrics) String() string {
	return fmt.Sprintf("id=%d status=%s messages=%s records=%s bytes=%s errors=%s duration=%s",
		m.ID, m.Status,
		humanize.Comma(int64(m.MessageCount)),
		humanize.Comma(int64(m.RecordCount)),
		m.HumanBytes(),
		humanize.Comma(int64(m.ErrorCount)),
		m.Duration)
}

func perSecond(count float64, d time.Duration) (float64, bool) {
	seconds := d.Seconds()
	if seconds <= 0 || count <= 0 {
		return 0, false
	}
	return count / seconds, true
}

// Merge folds o into m, keeping m's ID.
func (m *ComponentMetrics) Merge(o ComponentMetrics) {
	m.Status = mergeStatus(m.Status, o.Status)
	m.Duration += o.Duration
	m.MessageCount += o.MessageCount
	m.ByteCount += o.ByteCount
	m.RecordCount += o.RecordCount
	m.ErrorCount += o.ErrorCount
}

// Combine returns the aggregate of a and b with ID 0.
// Failed dominates Active, which dominates everything else; any other
// pair combines to Completed.
func Combine(a, b ComponentMetrics) ComponentMetrics {
	out := a
	out.Merge(b)
	out.ID = 0
	return out
}

// Sum folds ms with Combine. An empty slice yields idle metrics with ID 0.
func Sum(ms ...ComponentMetrics) ComponentMetrics {
	if len(ms) == 0 {
		return New(0)
	}
	out := ms[0]
	out.ID = 0
	for _, m := range ms[1:] {
		out = Combine(out, m)
	}
	return out
}

func mergeStatus(a, b Status) Status {
	switch {
	case a == Failed || b == Failed:
		return Failed
	case a == Active || b == Active:
		return Active
	default:
		return Completed
	}
}
