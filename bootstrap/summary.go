package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/riv/component"
)

// Summary prints what a riv process started with.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary that writes to out.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the components of registry with their live health.
// Components that implement component.Describable are listed with their
// details.
func (s *Summary) Display(registry *component.Registry) {
	fmt.Fprintf(s.out, "\n%s %s started in %s\n", s.serviceName, s.version, s.startupDuration.Round(time.Millisecond))

	components := registry.Components()
	if len(components) == 0 {
		fmt.Fprintf(s.out, "   └── no components registered\n\n")
		return
	}

	health := make(map[string]component.Health, len(components))
	for _, h := range registry.HealthAll(context.Background()) {
		health[h.Name] = h
	}

	healthy := 0
	for i, c := range components {
		prefix := "├──"
		if i == len(components)-1 {
			prefix = "└──"
		}
		h := health[c.Name()]
		if h.Status == component.StatusHealthy {
			healthy++
		}

		line := c.Name()
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			line = desc.Name
			if desc.Details != "" {
				line += ": " + desc.Details
			}
		}
		if h.Message != "" {
			line += " (" + h.Message + ")"
		}
		fmt.Fprintf(s.out, "   %s [%s] %s\n", prefix, healthTag(h.Status), line)
	}
	fmt.Fprintf(s.out, "   %d/%d components healthy\n\n", healthy, len(components))
}

func healthTag(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "ok"
	case component.StatusDegraded:
		return "degraded"
	case component.StatusUnhealthy:
		return "down"
	default:
		return "?"
	}
}
