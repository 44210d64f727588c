package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/experiment"
	"github.com/san-kum/compassim/internal/storage"
	"github.com/san-kum/compassim/internal/viz"
)

func runCommand() *cobra.Command {
	var (
		tests        []string
		experimental string
		noSave       bool
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run rapidity and stability tests and store the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, exp, err := newExperiment(cmd)
			if err != nil {
				return err
			}
			selected, err := parseTests(tests)
			if err != nil {
				return err
			}
			if experimental != "" {
				s, err := loadSeries(experimental)
				if err != nil {
					return err
				}
				if err := exp.Engine().LoadExperimental(s); err != nil {
					return err
				}
			}

			report, err := exp.Run(cmd.Context(), selected...)
			if err != nil {
				return err
			}

			if asJSON {
				return storage.ExportJSON(os.Stdout, report, exp.Runs())
			}
			fmt.Println(viz.RenderReport(report))
			if run, ok := exp.Result(experiment.TestRapidity); ok {
				fmt.Println(anglePlot(run, "rapidity"))
			}

			if noSave {
				return nil
			}
			st := storage.New(cfg.DataDir)
			if err := st.Init(); err != nil {
				return err
			}
			id, err := st.Save(report, exp.Runs())
			if err != nil {
				return err
			}
			logger.Info("run stored", "id", id, "dir", cfg.DataDir)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tests, "tests", nil, "tests to run (default all)")
	cmd.Flags().StringVar(&experimental, "experimental", "", "measured rapidity series (xlsx or csv)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print report and trajectories as JSON")
	return cmd
}

func parseTests(names []string) ([]experiment.Test, error) {
	out := make([]experiment.Test, 0, len(names))
	for _, n := range names {
		t, err := experiment.ParseTest(n)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, experiment.AllTests())
		}
		out = append(out, t)
	}
	return out, nil
}

func anglePlot(run *dynamic.Run, caption string) string {
	return asciigraph.Plot(run.Angles(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s angle (%s)", caption, run.Unit())),
	)
}

func rapidityCommand() *cobra.Command {
	var small bool
	cmd := &cobra.Command{
		Use:   "rapidity",
		Short: "release the needle from its deflection and time its settling",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, exp, err := newExperiment(cmd)
			if err != nil {
				return err
			}
			e := exp.Engine()
			run, err := e.Rapidity(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(anglePlot(run, "rapidity"))
			if tho, ok := e.Tho(); ok {
				fmt.Printf("tho: %.3f s (last crossing of %g°)\n", tho, cfg.Params.SettlingLimitDeg)
			} else {
				fmt.Printf("tho: absent, |angle| never crossed %g° within %g s\n", cfg.Params.SettlingLimitDeg, cfg.Params.RapidityDuration)
			}

			if small {
				lin, err := e.RapiditySmallAngle(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Println(anglePlot(lin, "small-angle rapidity"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&small, "small-angle", false, "also run the linearized equation")
	return cmd
}

func stabilityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stability",
		Short: "drive the needle with the walking gait and measure its swing",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, exp, err := newExperiment(cmd)
			if err != nil {
				return err
			}
			e := exp.Engine()
			run, err := e.Stability(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(anglePlot(run, "stability"))
			amp, _ := e.StabAmp()
			fmt.Printf("stab_amp: %.3f° peak to peak over the second half\n", amp)

			lin, err := e.StabilitySmallAngle(cmd.Context())
			if err != nil {
				return err
			}
			ss, err := e.Response()
			if err != nil {
				return err
			}
			angles := lin.Angles()
			tail := angles[len(angles)/2:]
			var peak float64
			for _, a := range tail {
				peak = math.Max(peak, math.Abs(a))
			}
			fmt.Printf("small angle: amplification %.4e, phase %.4f rad\n", ss.Amplification, ss.Phase)
			fmt.Printf("steady state amplitude: %.4f° predicted, %.4f° simulated\n",
				ss.Amplitude()*180/math.Pi, peak*180/math.Pi)
			return nil
		},
	}
	return cmd
}

func replayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [test]",
		Short: "play a test back on a terminal compass dial",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			test := experiment.TestRapidity
			if len(args) == 1 {
				t, err := experiment.ParseTest(args[0])
				if err != nil {
					return err
				}
				test = t
			}
			cfg, exp, err := newExperiment(cmd)
			if err != nil {
				return err
			}
			report, err := exp.Run(cmd.Context(), test)
			if err != nil {
				return err
			}
			run, _ := exp.Result(test)

			var tho *float64
			if strings.HasPrefix(string(test), "rapidity") {
				tho = report.Tho
			}
			p := tea.NewProgram(viz.NewReplay(run, cfg.Params.SettlingLimitDeg, tho), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	return cmd
}
