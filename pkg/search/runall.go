package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tourney/sts/pkg/tournament"
)

// Job is one run to perform.
type Job struct {
	Instance tournament.Instance
	Mode     Mode
}

// Report is the result of a Job. Err holds the run's error, if any;
// Outcome may be set even when Err is.
type Report struct {
	Job     Job
	Outcome *Outcome
	Err     error
}

// RunAll performs jobs on at most parallelism goroutines and returns
// their reports in job order. Each job gets its own budget. Failed
// jobs do not stop the others; RunAll itself only fails if ctx is done.
// If onReport is non-nil it is called as each job completes, possibly
// concurrently.
func RunAll(ctx context.Context, d *Driver, jobs []Job, parallelism int, onReport func(Report)) ([]Report, error) {
	if parallelism < 1 {
		parallelism = 1
	}
	reports := make([]Report, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := d.Run(ctx, job.Instance, job.Mode)
			reports[i] = Report{Job: job, Outcome: out, Err: err}
			if onReport != nil {
				onReport(reports[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
