package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tourney/sts/pkg/config"
	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/encoding/cnf"
	"github.com/tourney/sts/pkg/export"
	"github.com/tourney/sts/pkg/tournament"
)

type exportOptions struct {
	instances     []int
	formats       []string
	dir           string
	label         string
	bound         int
	soft          bool
	symmetry      bool
	pairwiseLimit int
}

func newExportCmd(o *rootOptions) *cobra.Command {
	e := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write encodings for external solvers",
		Long: `Export writes the encoding of every instance in DIMACS CNF, weighted
partial MaxSAT (WCNF) or SMT-LIB QF_LIA form. WCNF files always carry the
soft fairness objective; the other formats follow --bound and --soft.

    $ sts export -n 6,8 --formats cnf,smt2 --bound 1 -d out/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(o.logger)
		},
	}
	cmd.Flags().IntSliceVarP(&e.instances, "teams", "n", config.DefaultInstances, "team counts to export")
	cmd.Flags().StringSliceVarP(&e.formats, "formats", "f", []string{string(export.DIMACS), string(export.WCNF), string(export.SMTLIB)}, "formats to write: cnf, wcnf, smt2")
	cmd.Flags().StringVarP(&e.dir, "output-dir", "d", ".", "directory the files are written to")
	cmd.Flags().StringVar(&e.label, "label", "", "prefix of SMT-LIB file names")
	cmd.Flags().IntVar(&e.bound, "bound", -1, "enforce this imbalance bound, -1 for none")
	cmd.Flags().BoolVar(&e.soft, "soft", false, "encode the imbalance as soft preferences")
	cmd.Flags().BoolVar(&e.symmetry, "symmetry", false, "add the symmetry-breaking constraints")
	cmd.Flags().IntVar(&e.pairwiseLimit, "pairwise-limit", cnf.DefaultPolicy.PairwiseLimit, "largest at-most group compiled pairwise instead of with a sorting network")
	return cmd
}

func (e *exportOptions) options(soft bool) []encoding.Option {
	var opts []encoding.Option
	if e.symmetry {
		opts = append(opts, encoding.WithSymmetry(encoding.AllSymmetry))
	}
	if soft {
		return append(opts, encoding.WithSoftObjective())
	}
	if e.bound >= 0 {
		opts = append(opts, encoding.WithBound(e.bound))
	}
	if e.soft {
		opts = append(opts, encoding.WithSoftObjective())
	}
	return opts
}

func (e *exportOptions) run(logger logrus.FieldLogger) error {
	formats := make([]export.Format, 0, len(e.formats))
	for _, f := range e.formats {
		switch format := export.Format(f); format {
		case export.DIMACS, export.WCNF, export.SMTLIB:
			formats = append(formats, format)
		default:
			return errors.Errorf("unknown format %q", f)
		}
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return err
	}
	policy := cnf.Policy{PairwiseLimit: e.pairwiseLimit}

	for _, n := range e.instances {
		in, err := tournament.NewInstance(n)
		if err != nil {
			return err
		}
		for _, format := range formats {
			f, err := encoding.Encode(in, e.options(format == export.WCNF)...)
			if err != nil {
				return errors.Wrapf(err, "encoding %s", in)
			}
			path := filepath.Join(e.dir, export.FileName(format, e.label, n))
			write := func(w io.Writer) error {
				switch format {
				case export.DIMACS:
					return export.WriteDIMACS(w, cnf.Compile(f, policy))
				case export.WCNF:
					return export.WriteWCNF(w, cnf.Compile(f, policy))
				}
				return export.WriteSMTLIB(w, f)
			}
			if err := writeFile(path, write); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"file":        path,
				"atoms":       f.Atoms().Len(),
				"constraints": len(f.Constraints()),
			}).Info("exported")
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	return nil
}
