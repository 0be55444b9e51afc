// Package health provides a concurrent health-check framework. Components
// register Check functions, and the Checker runs them in parallel to
// produce an aggregate Report.
package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the health state of a component or the system overall.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Check probes a single dependency and returns its status.
type Check func(ctx context.Context) ComponentHealth

// ComponentHealth holds the result of a single component check.
type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Report is the aggregated result of all component checks.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Checker runs registered health checks concurrently. Register all checks
// before the first Run call.
type Checker struct {
	names  []string
	checks map[string]Check
}

// NewChecker creates an empty Checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]Check)}
}

// Register adds a named health check.
func (c *Checker) Register(name string, check Check) {
	if _, ok := c.checks[name]; !ok {
		c.names = append(c.names, name)
	}
	c.checks[name] = check
}

// CheckErr adapts a plain error-returning probe into a Check.
func CheckErr(probe func(ctx context.Context) error) Check {
	return func(ctx context.Context) ComponentHealth {
		start := time.Now()
		if err := probe(ctx); err != nil {
			return ComponentHealth{
				Status:  StatusDown,
				Message: err.Error(),
				Latency: time.Since(start).String(),
			}
		}
		return ComponentHealth{
			Status:  StatusUp,
			Latency: time.Since(start).String(),
		}
	}
}

// Run executes all registered checks concurrently and returns an aggregated
// Report. The overall status is down if any component is down.
func (c *Checker) Run(ctx context.Context) Report {
	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(c.checks)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	results := make([]ComponentHealth, len(c.names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range c.names {
		check := c.checks[name]
		g.Go(func() error {
			results[i] = check(ctx)
			return nil
		})
	}
	_ = g.Wait()
	for i, name := range c.names {
		report.Components[name] = results[i]
		if results[i].Status == StatusDown {
			report.Status = StatusDown
		}
	}
	return report
}
