// Package config reads the YAML run file that selects instances, backend and
// search strategy for a batch of runs.
package config

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tourney/sts/pkg/search"
	"github.com/tourney/sts/pkg/solver"
	"github.com/tourney/sts/pkg/tournament"
)

const (
	DefaultBackend     = "gini"
	DefaultResultsPath = "results.json"
)

// DefaultInstances are the team counts run when a file names none.
var DefaultInstances = []int{6, 8, 10, 12}

type File struct {
	RunConfig Config `yaml:"sts"`
}

type Config struct {
	Instances   []int         `yaml:"instances"`
	Timeout     time.Duration `yaml:"timeout"`
	Backend     string        `yaml:"backend"`
	Symmetry    bool          `yaml:"symmetry"`
	Objective   string        `yaml:"objective"`
	Parallelism int           `yaml:"parallelism"`
	Results     string        `yaml:"results"`
	CrashPolicy string        `yaml:"crashPolicy"`
}

// Default returns the configuration used when no run file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func LoadConfig(cfgPath string) (*Config, error) {
	f, err := os.Open(os.ExpandEnv(cfgPath))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return Parse(d)
}

// Parse decodes a run file, fills in defaults and validates the result.
func Parse(d []byte) (*Config, error) {
	var cfgFile File
	if err := yaml.UnmarshalStrict(d, &cfgFile); err != nil {
		return nil, errors.Wrap(err, "parsing run file")
	}

	config := &cfgFile.RunConfig
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Instances == nil {
		c.Instances = append([]int(nil), DefaultInstances...)
	}
	if c.Timeout <= 0 {
		c.Timeout = search.DefaultBudget
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.Objective == "" {
		c.Objective = string(search.Decide)
	}
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	if c.Results == "" {
		c.Results = DefaultResultsPath
	}
	if c.CrashPolicy == "" {
		c.CrashPolicy = search.Abort.String()
	}
}

// Validate reports the first field that cannot be used for a run.
func (c *Config) Validate() error {
	for _, n := range c.Instances {
		if _, err := tournament.NewInstance(n); err != nil {
			return errors.Wrap(err, "instances")
		}
	}
	if _, err := solver.Lookup(c.Backend); err != nil {
		return errors.Wrap(err, "backend")
	}
	if _, err := search.ParseMode(c.Objective); err != nil {
		return errors.Wrap(err, "objective")
	}
	if _, err := search.ParseCrashPolicy(c.CrashPolicy); err != nil {
		return errors.Wrap(err, "crashPolicy")
	}
	return nil
}

// Mode returns the parsed objective. It panics if the config was not validated.
func (c *Config) Mode() search.Mode {
	m, err := search.ParseMode(c.Objective)
	if err != nil {
		panic(err)
	}
	return m
}

// Policy returns the parsed crash policy. It panics if the config was not validated.
func (c *Config) Policy() search.CrashPolicy {
	p, err := search.ParseCrashPolicy(c.CrashPolicy)
	if err != nil {
		panic(err)
	}
	return p
}

// Jobs expands the configured instances into search jobs.
func (c *Config) Jobs() ([]search.Job, error) {
	mode, err := search.ParseMode(c.Objective)
	if err != nil {
		return nil, err
	}
	jobs := make([]search.Job, 0, len(c.Instances))
	for _, n := range c.Instances {
		in, err := tournament.NewInstance(n)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, search.Job{Instance: in, Mode: mode})
	}
	return jobs, nil
}
