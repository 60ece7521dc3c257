package worker

import "context"

// Job is a unit of background work.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Execute runs the job.
	Execute(ctx context.Context) error
}

// Func adapts a function to the Job interface.
type Func struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name implements Job.
func (f Func) Name() string { return f.JobName }

// Execute implements Job.
func (f Func) Execute(ctx context.Context) error { return f.Fn(ctx) }
