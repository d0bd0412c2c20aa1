// Package filtering applies the hard exclusion filters that run before any
// scoring. These are not scored signals: a posting removed here never reaches
// the scorer, whatever its other qualities.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/job"
)

// Filter represents a single exclusion step applied to candidate jobs.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, jobs *job.Jobs) (*job.Jobs, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
	Prefs  *job.UserPreferences
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
}

// DefaultSteps returns the full exclusion pipeline in its fixed order.
func DefaultSteps() []Filter {
	return []Filter{
		NewTeaching(),
		NewLegal(),
		NewAssistant(),
		NewManager(),
		NewLanguage(),
	}
}

// Run executes the supplied filters sequentially, returning the surviving
// candidate list.
func Run(ctx context.Context, deps Deps, steps []Filter, jobs *job.Jobs) (*job.Jobs, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		jobs = next
	}

	return jobs, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
