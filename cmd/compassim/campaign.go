package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/compassim/internal/analysis"
	"github.com/san-kum/compassim/internal/automation"
	"github.com/san-kum/compassim/internal/optim"
	"github.com/san-kum/compassim/internal/storage"
)

// parseRange reads lo:hi:n.
func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("range %q: want lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("range %q: bad count", s)
	}
	return optim.Linspace(lo, hi, n), nil
}

func opt(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func fitCommand() *cobra.Command {
	var kmRange, kvRange string
	cmd := &cobra.Command{
		Use:   "fit [series]",
		Short: "fit k_m and k_v to a measured rapidity test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			measured, err := loadSeries(args[0])
			if err != nil {
				return err
			}
			kms, err := parseRange(kmRange)
			if err != nil {
				return err
			}
			kvs, err := parseRange(kvRange)
			if err != nil {
				return err
			}
			c, err := cfg.BuildCompass()
			if err != nil {
				return err
			}
			f, err := cfg.BuildField()
			if err != nil {
				return err
			}

			logger.Info("fitting", "points", len(kms)*len(kvs), "samples", measured.Len())
			fit, err := optim.FitRapidity(cmd.Context(), c, f, cfg.Params, measured, kms, kvs)
			if err != nil {
				return err
			}
			fmt.Printf("k_m = %g\nk_v = %g\nrms = %.3f°\n", fit.MagneticFit, fit.ViscousFit, fit.RMS)
			return nil
		},
	}
	cmd.Flags().StringVar(&kmRange, "km-range", "0.5:2:16", "k_m grid lo:hi:n")
	cmd.Flags().StringVar(&kvRange, "kv-range", "0.005:1:40", "k_v grid lo:hi:n")
	return cmd
}

func sweepCommand() *cobra.Command {
	var (
		tests   []string
		workers int
		ascii   bool
	)
	cmd := &cobra.Command{
		Use:   "sweep [param] [min] [max] [steps]",
		Short: "vary one parameter and tabulate tho and stab_amp",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			lo, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}
			hi, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[3])
			if err != nil {
				return err
			}
			selected, err := parseTests(tests)
			if err != nil {
				return err
			}

			if ascii && (args[0] == "step_frequency" || args[0] == "f") {
				c, err := cfg.BuildCompass()
				if err != nil {
					return err
				}
				f, err := cfg.BuildField()
				if err != nil {
					return err
				}
				points, err := analysis.FrequencyResponse(cmd.Context(), c, f, cfg.Params, optim.Linspace(lo, hi, n))
				if err != nil {
					return err
				}
				fmt.Println(analysis.ResponseToASCII(points, 80, 12))
				return nil
			}

			results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
				Param:   args[0],
				Min:     lo,
				Max:     hi,
				Steps:   n,
				Tests:   selected,
				Workers: workers,
			}, cfg, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tTHO (s)\tSTAB_AMP (deg)\tDAMPING\n", strings.ToUpper(args[0]))
			for _, r := range results {
				fmt.Fprintf(w, "%g\t%s\t%s\t%.3f\n", r.Value, opt(r.Report.Tho, "%.3f"), opt(r.Report.StabAmp, "%.3f"), r.Report.DampingRatio)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&tests, "tests", []string{"rapidity", "stability"}, "tests per point")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&ascii, "plot", false, "for step_frequency, plot simulated vs predicted amplitude")
	return cmd
}

func monteCarloCommand() *cobra.Command {
	mc := automation.MonteCarloConfig{}
	var tests []string
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "spread compass quantities by a tolerance and summarize the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mc.Tests, err = parseTests(tests)
			if err != nil {
				return err
			}
			results, err := automation.RunMonteCarlo(cmd.Context(), &mc, cfg, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METRIC\tN\tMISSING\tMEAN\tSTD\tMIN\tMAX")
			for _, s := range automation.MonteCarloStats(results) {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.4g\t%.4g\t%.4g\t%.4g\n", s.Name, s.Count, s.Missing, s.Mean, s.StdDev, s.Min, s.Max)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&mc.Params, "params", []string{"magnet_mass", "magnet_volume", "offset", "viscosity"}, "quantities to perturb")
	cmd.Flags().Float64Var(&mc.Spread, "spread", 0.05, "relative tolerance")
	cmd.Flags().IntVar(&mc.Trials, "trials", 100, "number of trials")
	cmd.Flags().Int64Var(&mc.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&mc.Workers, "workers", 0, "parallel trials (default GOMAXPROCS)")
	cmd.Flags().StringSliceVar(&tests, "tests", []string{"rapidity", "stability"}, "tests per trial")
	return cmd
}

func scenarioCommand() *cobra.Command {
	var noSave bool
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			results, err := automation.RunScenario(cmd.Context(), sc, cfg, logger)
			if err != nil {
				return err
			}

			st := storage.New(cfg.DataDir)
			if !noSave {
				if err := st.Init(); err != nil {
					return err
				}
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tCOMPASS\tLOCATION\tTHO (s)\tSTAB_AMP (deg)\tRUN ID")
			for _, r := range results {
				id := "-"
				if !noSave {
					id, err = st.Save(r.Report, r.Exp.Runs())
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Name, r.Report.Compass, r.Report.Location,
					opt(r.Report.Tho, "%.3f"), opt(r.Report.StabAmp, "%.3f"), id)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	return cmd
}
