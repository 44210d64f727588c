package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/compassim/internal/analysis"
	"github.com/san-kum/compassim/internal/config"
	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/experiment"
	"github.com/san-kum/compassim/internal/plot"
	"github.com/san-kum/compassim/internal/storage"
)

func store(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = config.DefaultDataDir
	}
	return storage.New(cfg.DataDir), nil
}

// storedTrace resolves [run_id] [test] arguments, rapidity by default.
func storedTrace(cmd *cobra.Command, args []string) (*storage.RunMetadata, experiment.Test, *storage.Trace, error) {
	st, err := store(cmd)
	if err != nil {
		return nil, "", nil, err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return nil, "", nil, err
	}
	test := experiment.TestRapidity
	if len(args) > 1 {
		if test, err = experiment.ParseTest(args[1]); err != nil {
			return nil, "", nil, err
		}
	}
	tr, err := st.LoadTrace(args[0], test)
	if err != nil {
		return nil, "", nil, err
	}
	return meta, test, tr, nil
}

func unitOf(test experiment.Test) dynamic.Unit {
	if strings.HasSuffix(string(test), "small_angle") {
		return dynamic.Radians
	}
	return dynamic.Degrees
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store(cmd)
			if err != nil {
				return err
			}
			runs, err := st.List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCOMPASS\tLOCATION\tTHO (s)\tSTAB_AMP (deg)\tTESTS\tTIME")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Report.Compass, r.Report.Location,
					opt(r.Report.Tho, "%.3f"), opt(r.Report.StabAmp, "%.3f"),
					strings.Join(r.Tests, ","), r.Timestamp.Local().Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func plotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id] [test]",
		Short: "plot a stored trace in the terminal",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, test, tr, err := storedTrace(cmd, args)
			if err != nil {
				return err
			}
			if len(tr.Angles) == 0 {
				return fmt.Errorf("run %s has no %s samples", meta.ID, test)
			}
			fmt.Println(asciigraph.Plot(tr.Angles,
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("%s %s angle (%s)", meta.ID, test, unitOf(test))),
			))
			return nil
		},
	}
}

func pngCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "png [run_id] [test]",
		Short: "render a stored trace to an image",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, test, tr, err := storedTrace(cmd, args)
			if err != nil {
				return err
			}
			var limitDeg float64
			var tho *float64
			if test == experiment.TestRapidity {
				limitDeg = meta.Report.Params.SettlingLimitDeg
				tho = meta.Report.Tho
			}
			p, err := plot.Trace(fmt.Sprintf("%s %s", meta.Report.Compass, test), unitOf(test), tr.Times, tr.Angles, limitDeg, tho)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s_%s.png", meta.ID, test)
			}
			if err := plot.Save(p, out); err != nil {
				return err
			}
			fmt.Printf("saved %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (png, svg, pdf)")
	return cmd
}

func analyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [run_id] [test]",
		Short: "spectrum and phase portrait of a stored trace",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, test, tr, err := storedTrace(cmd, args)
			if err != nil {
				return err
			}
			if len(tr.Times) < 2 {
				return fmt.Errorf("run %s: %s trace too short", meta.ID, test)
			}
			dt := tr.Times[1] - tr.Times[0]

			spectrum, err := analysis.NewSpectrum(tr.Angles, dt)
			if err != nil {
				return err
			}
			hz, amp := spectrum.Peak()
			fmt.Printf("dominant frequency: %.3f Hz (%.3f %s)\n", hz, amp, unitOf(test))
			if f := meta.Report.Params.StepFrequency; strings.HasPrefix(string(test), "stability") && f > 0 {
				fmt.Printf("gait forcing:       %.3f Hz\n", f/60)
			}
			fmt.Println(asciigraph.Plot(spectrum.Amplitude,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("amplitude spectrum, %.3f Hz per bin", spectrum.Freqs[1])),
			))

			portrait := &analysis.Portrait{Unit: unitOf(test)}
			for i := range tr.Angles {
				portrait.Points = append(portrait.Points, analysis.Point{X: tr.Angles[i], Y: tr.Omegas[i]})
			}
			fmt.Println("phase portrait (angle, rate)")
			fmt.Print(portrait.ASCII(60, 20))
			return nil
		},
	}
}

func exportJSONCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store(cmd)
			if err != nil {
				return err
			}
			return st.Export(os.Stdout, args[0])
		},
	}
}

func exportCSVCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id] [test]",
		Short: "export a stored trace as CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store(cmd)
			if err != nil {
				return err
			}
			test := experiment.TestRapidity
			if len(args) > 1 {
				if test, err = experiment.ParseTest(args[1]); err != nil {
					return err
				}
			}
			return st.CopyTrace(os.Stdout, args[0], test)
		},
	}
}
