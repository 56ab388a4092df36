package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kbukum/whispersrt/component"
)

// Summary collects what the application started with and renders it once
// startup completes.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	clients         []ClientInfo
}

// ClientInfo describes an outbound dependency such as a transcription backend.
type ClientInfo struct {
	Name   string
	Target string
	Type   string
}

// NewSummary creates a new startup summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackClient records an outbound client.
func (s *Summary) TrackClient(name, target, clientType string) {
	s.clients = append(s.clients, ClientInfo{Name: name, Target: target, Type: clientType})
}

// Render writes the summary: components with live health, clients, and the
// routes of any RouteProvider in the registry.
func (s *Summary) Render(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var routes []component.Route
	if registry != nil {
		comps := registry.All()
		health := registry.HealthAll(context.Background())
		if len(comps) > 0 {
			tw := newTable("Component", "Type", "Details", "Health")
			for i, c := range comps {
				desc := component.Description{Name: c.Name()}
				if d, ok := c.(component.Describable); ok {
					desc = d.Describe()
					if desc.Name == "" {
						desc.Name = c.Name()
					}
				}
				status := string(health[i].Status)
				if health[i].Message != "" {
					status += ": " + health[i].Message
				}
				tw.AppendRow(table.Row{desc.Name, desc.Type, desc.Details, status})
				if rp, ok := c.(component.RouteProvider); ok {
					routes = append(routes, rp.Routes()...)
				}
			}
			fmt.Fprintln(w, tw.Render())
		}
	}

	if len(s.clients) > 0 {
		tw := newTable("Client", "Type", "Target")
		for _, c := range s.clients {
			tw.AppendRow(table.Row{c.Name, c.Type, c.Target})
		}
		fmt.Fprintln(w, tw.Render())
	}

	if len(routes) > 0 {
		tw := newTable("Method", "Path", "Handler")
		for _, r := range routes {
			tw.AppendRow(table.Row{r.Method, r.Path, r.Handler})
		}
		fmt.Fprintln(w, tw.Render())
	}
}

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw
}
