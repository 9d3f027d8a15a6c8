package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tourney/sts/pkg/config"
	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/metrics"
	"github.com/tourney/sts/pkg/results"
	"github.com/tourney/sts/pkg/search"
	"github.com/tourney/sts/pkg/solver"
)

type solveOptions struct {
	configPath  string
	instances   []int
	backend     string
	objective   string
	symmetry    bool
	timeout     time.Duration
	parallelism int
	results     string
	crashPolicy string
	trace       bool
	metricsFile string
}

func (s *solveOptions) bindFlags(fs *pflag.FlagSet) {
	def := config.Default()
	fs.IntSliceVarP(&s.instances, "teams", "n", def.Instances, "team counts to schedule")
	fs.StringVarP(&s.backend, "backend", "b", def.Backend, fmt.Sprintf("decision procedure, one of %v", solver.Names()))
	fs.StringVarP(&s.objective, "objective", "m", def.Objective, "decision, search, linear or soft")
	fs.BoolVar(&s.symmetry, "symmetry", def.Symmetry, "add the symmetry-breaking constraints")
	fs.DurationVarP(&s.timeout, "timeout", "t", def.Timeout, "time budget of each run")
	fs.IntVarP(&s.parallelism, "parallelism", "p", def.Parallelism, "number of runs in flight")
	fs.StringVarP(&s.results, "results", "r", def.Results, "JSON file that collects result records")
	fs.StringVar(&s.crashPolicy, "crash-policy", def.CrashPolicy, "what a run does after a backend crash, abort or continue")
	fs.BoolVar(&s.trace, "trace", false, "print every probe of the search")
	fs.StringVar(&s.metricsFile, "metrics-file", "", "write probe metrics in the Prometheus text format to this file")
}

// override copies every flag set on the command line into cfg.
func (s *solveOptions) override(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("teams") {
		cfg.Instances = s.instances
	}
	if flags.Changed("backend") {
		cfg.Backend = s.backend
	}
	if flags.Changed("objective") {
		cfg.Objective = s.objective
	}
	if flags.Changed("symmetry") {
		cfg.Symmetry = s.symmetry
	}
	if flags.Changed("timeout") {
		cfg.Timeout = s.timeout
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = s.parallelism
	}
	if flags.Changed("results") {
		cfg.Results = s.results
	}
	if flags.Changed("crash-policy") {
		cfg.CrashPolicy = s.crashPolicy
	}
	return cfg.Validate()
}

func newSolveCmd(o *rootOptions) *cobra.Command {
	s := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve [n...]",
		Short: "Solve instances with an in-process backend",
		Long: `Solve schedules n teams for every n given as an argument or with --teams,
and merges one result record per instance into the results file.

    $ sts solve 6 8 --objective search --symmetry`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := s.override(cmd.Flags(), cfg); err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Instances = cfg.Instances[:0]
				for _, arg := range args {
					n, err := strconv.Atoi(arg)
					if err != nil {
						return errors.Errorf("instance %q is not a team count", arg)
					}
					cfg.Instances = append(cfg.Instances, n)
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return s.run(cmd.Context(), cfg, o.logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	s.bindFlags(cmd.Flags())
	return cmd
}

func newBatchCmd(o *rootOptions) *cobra.Command {
	s := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Solve the instances listed in a run file",
		Long: `Batch reads a YAML run file and solves every instance it lists, with
command line flags taking precedence over the file.

    sts:
      instances: [6, 8, 10, 12]
      objective: search
      symmetry: true
      timeout: 300s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(s.configPath)
			if err != nil {
				return errors.Wrapf(err, "loading %s", s.configPath)
			}
			if err := s.override(cmd.Flags(), cfg); err != nil {
				return err
			}
			return s.run(cmd.Context(), cfg, o.logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&s.configPath, "config", "c", "", "path of the run file")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		logrus.Fatalf("Failed to mark `config` flag for `batch` subcommand as required")
	}
	s.bindFlags(cmd.Flags())
	return cmd
}

func (s *solveOptions) run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, out, errOut io.Writer) error {
	backend, err := solver.Lookup(cfg.Backend)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return err
	}

	rule := encoding.NoSymmetry
	if cfg.Symmetry {
		rule = encoding.AllSymmetry
	}
	options := []search.Option{
		search.WithSymmetry(rule),
		search.WithBudget(cfg.Timeout),
		search.WithCrashPolicy(cfg.Policy()),
		search.WithLogger(logger),
	}
	if s.trace {
		options = append(options, search.WithTracer(search.LoggingTracer{Writer: errOut}))
	}
	driver := search.New(metrics.Instrument(backend), options...)

	jobs, err := cfg.Jobs()
	if err != nil {
		return err
	}
	store := results.NewStore(cfg.Results)
	approach := results.Approach(cfg.Backend, cfg.Mode(), cfg.Symmetry)
	logger.WithFields(logrus.Fields{
		"approach": approach,
		"results":  store.Path(),
		"jobs":     len(jobs),
	}).Info("starting runs")

	var (
		mu     sync.Mutex
		failed int
	)
	onReport := func(r search.Report) {
		key := results.Key(approach, r.Job.Instance.Teams)
		log := logger.WithField("key", key)
		ok := s.report(cfg, store, key, r, log, out, &mu)
		if !ok {
			mu.Lock()
			failed++
			mu.Unlock()
		}
	}
	if _, err := search.RunAll(ctx, driver, jobs, cfg.Parallelism, onReport); err != nil {
		return err
	}

	if s.metricsFile != "" {
		if err := prometheus.WriteToTextfile(s.metricsFile, reg); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d runs failed", failed, len(jobs))
	}
	return nil
}

// report stores the record of r and prints a summary line. It returns
// false if the run failed. An instance proven to have no schedule is
// not a failure.
func (s *solveOptions) report(cfg *config.Config, store *results.Store, key string, r search.Report, log logrus.FieldLogger, out io.Writer, mu *sync.Mutex) bool {
	ok := true
	if r.Err != nil {
		var nse *search.NoSolutionError
		if errors.As(r.Err, &nse) && nse.Structural {
			log.Info(nse.Error())
		} else {
			log.WithError(r.Err).Error("run failed")
			ok = false
		}
	}
	if r.Outcome == nil {
		return false
	}
	metrics.EmitOutcome(cfg.Backend, r.Outcome)

	rec := results.FromOutcome(r.Outcome, cfg.Timeout)
	var crash *solver.CrashError
	if r.Outcome.Schedule == nil && errors.As(r.Err, &crash) {
		// Nothing was answered, same as running out of budget.
		rec = results.Timeout(cfg.Timeout)
	}
	if err := store.Put(key, rec); err != nil {
		log.WithError(err).Error("storing result")
		ok = false
	}

	bound := "-"
	if r.Outcome.Bound != search.NoBound {
		bound = strconv.Itoa(r.Outcome.Bound)
	}
	mu.Lock()
	fmt.Fprintf(out, "%s\t%s\tbound=%s\toptimal=%t\ttime=%ds\n", key, r.Outcome.State, bound, rec.Optimal, rec.Time)
	mu.Unlock()
	return ok
}
