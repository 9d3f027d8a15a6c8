package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/tourney/sts/pkg/decode"
	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/results"
	"github.com/tourney/sts/pkg/solver"
	"github.com/tourney/sts/pkg/tournament"
)

type decodeOptions struct {
	teams    int
	format   string
	problem  string
	output   string
	results  string
	approach string
	elapsed  time.Duration
}

// decoded is the document printed by the decode command.
type decoded struct {
	Teams     int                 `json:"n" yaml:"n"`
	Imbalance int                 `json:"imbalance" yaml:"imbalance"`
	Optimum   bool                `json:"optimum" yaml:"optimum"`
	Sol       tournament.Schedule `json:"sol" yaml:"sol"`
}

func newDecodeCmd(o *rootOptions) *cobra.Command {
	d := &decodeOptions{}
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Turn external solver output into a schedule",
		Long: `Decode reads the output of an external SAT, MaxSAT or SMT solver run on an
exported encoding, rebuilds the schedule and checks it. Output is read from
the file argument or from stdin. With --approach the schedule is also merged
into the results file.

    $ kissat 6.cnf | sts decode -n 6 --problem 6.cnf
    $ z3 sb_8.smt2 | sts decode -n 8 --format smt2 --problem sb_8.smt2 -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			format := d.format
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
				if format == "" && filepath.Ext(args[0]) == ".smt2" {
					format = "smt2"
				}
			}
			return d.run(in, format, o.logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&d.teams, "teams", "n", 0, "number of teams of the encoded instance")
	if err := cmd.MarkFlagRequired("teams"); err != nil {
		logrus.Fatalf("Failed to mark `teams` flag for `decode` subcommand as required")
	}
	cmd.Flags().StringVar(&d.format, "format", "", "solver output format, dimacs or smt2 (default from the file name, else dimacs)")
	cmd.Flags().StringVar(&d.problem, "problem", "", "exported cnf, wcnf or smt2 file whose atom grammar must match")
	cmd.Flags().StringVarP(&d.output, "output", "o", "json", "output format, json, yaml or text")
	cmd.Flags().StringVarP(&d.results, "results", "r", "results.json", "JSON file that collects result records")
	cmd.Flags().StringVar(&d.approach, "approach", "", "store the schedule under this approach name")
	cmd.Flags().DurationVar(&d.elapsed, "time", 0, "solver run time to store with the record")
	return cmd
}

func (d *decodeOptions) run(r io.Reader, format string, logger logrus.FieldLogger, out io.Writer) error {
	in, err := tournament.NewInstance(d.teams)
	if err != nil {
		return err
	}

	if err := d.checkProblem(); err != nil {
		return err
	}

	var (
		s       tournament.Schedule
		optimum bool
	)
	switch format {
	case "", "dimacs":
		s, optimum, err = d.fromDIMACS(in, r)
	case "smt2":
		s, err = d.fromSMT(in, r)
	default:
		return errors.Errorf("unknown solver output format %q", format)
	}
	if err != nil {
		return err
	}
	if err := tournament.Validate(in, s, nil); err != nil {
		return errors.Wrap(err, "decoded schedule is invalid")
	}

	doc := decoded{Teams: in.Teams, Imbalance: s.MaxImbalance(in.Teams), Optimum: optimum, Sol: s}
	logger.WithFields(logrus.Fields{"n": in.Teams, "imbalance": doc.Imbalance}).Debug("decoded")

	if d.approach != "" {
		rec := results.Record{Time: results.Seconds(d.elapsed, d.elapsed), Optimal: true, Sol: s}
		if optimum {
			obj := doc.Imbalance
			rec.Obj = &obj
		}
		if err := results.NewStore(d.results).Put(results.Key(d.approach, in.Teams), rec); err != nil {
			return err
		}
	}
	return d.print(out, doc)
}

func (d *decodeOptions) fromDIMACS(in tournament.Instance, r io.Reader) (tournament.Schedule, bool, error) {
	o, err := decode.ParseDIMACS(r)
	if err != nil {
		return nil, false, err
	}
	if o.Status != solver.Sat {
		return nil, false, errors.Errorf("solver reported %s", o.Status)
	}
	// Match atom IDs do not depend on encoding options.
	f, err := encoding.Encode(in)
	if err != nil {
		return nil, false, err
	}
	s, err := decode.FromModel(in, f.Atoms(), o.Value)
	return s, o.Optimum, err
}

// checkProblem verifies that the exported problem file, if given, was
// written with the atom grammar this binary decodes.
func (d *decodeOptions) checkProblem() error {
	if d.problem == "" {
		return nil
	}
	p, err := os.Open(d.problem)
	if err != nil {
		return err
	}
	defer p.Close()
	if err := decode.CheckGrammar(p); err != nil {
		return errors.Wrapf(err, "checking %s", d.problem)
	}
	return nil
}

func (d *decodeOptions) fromSMT(in tournament.Instance, r io.Reader) (tournament.Schedule, error) {
	o, err := decode.ParseSMT(r)
	if err != nil {
		return nil, err
	}
	if o.Status != solver.Sat {
		return nil, errors.Errorf("solver reported %s", o.Status)
	}
	return decode.FromNames(in, o.Values)
}

func (d *decodeOptions) print(out io.Writer, doc decoded) error {
	switch d.output {
	case "json":
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", b)
		return err
	case "yaml":
		b, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	case "text":
		_, err := fmt.Fprintf(out, "n=%d imbalance=%d\n%s", doc.Teams, doc.Imbalance, doc.Sol)
		return err
	}
	return errors.Errorf("unknown output format %q", d.output)
}
