package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type CheckFunc func(ctx context.Context) error

// Checker runs named preflight checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
	}
}

func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

type CheckResult struct {
	Status  Status            `json:"status"`
	Details map[string]string `json:"details,omitempty"`

	failures map[string]error
}

// Err joins the failures in name order, or returns nil when every check
// passed.
func (r CheckResult) Err() error {
	if len(r.failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.failures))
	for name := range r.failures {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %w", name, r.failures[name]))
	}
	return errors.Join(errs...)
}

// Check runs every registered check concurrently. The first failure cancels
// the context passed to the remaining checks.
func (c *Checker) Check(ctx context.Context) CheckResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := CheckResult{
		Status:   StatusHealthy,
		Details:  make(map[string]string, len(c.checks)),
		failures: make(map[string]error),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range c.checks {
		name, check := name, check
		g.Go(func() error {
			err := check(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Status = StatusUnhealthy
				result.Details[name] = err.Error()
				result.failures[name] = err
				return err
			}
			result.Details[name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	return result
}
