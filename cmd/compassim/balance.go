package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/compassim/internal/balance"
	"github.com/san-kum/compassim/internal/plot"
)

func balanceCommand() *cobra.Command {
	var tilt float64
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "static balance of the compass at the location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
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

			xOpt, err := balance.OptimalOffset(c, f)
			if err != nil {
				return err
			}
			alpha, err := balance.InclinationError(c, f, tilt)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "compass\t%s\n", c.Name)
			fmt.Fprintf(w, "field\t%s\n", f)
			fmt.Fprintf(w, "offset\t%.3f mm\n", c.Offset*1e3)
			fmt.Fprintf(w, "optimal offset\t%.3f mm\n", xOpt*1e3)
			fmt.Fprintf(w, "error at %g° tilt\t%.3f°\n", tilt, alpha*180/math.Pi)
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&tilt, "tilt", balance.DefaultTiltDeg, "lateral tilt (deg)")
	return cmd
}

func mapCommand() *cobra.Command {
	var (
		iso    bool
		out    string
		mapCfg = balance.DefaultMapConfig()
	)
	cmd := &cobra.Command{
		Use:   "map",
		Short: "latitudes where the compass stays usable, per longitude",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := cfg.BuildCompass()
			if err != nil {
				return err
			}

			if iso {
				curves, err := balance.IsoOffsetMap(cmd.Context(), c, mapCfg, balance.DefaultIsoOffsets())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "OFFSET (mm)\tPOINTS\tLAT RANGE")
				for _, cv := range curves {
					if len(cv.Lat) == 0 {
						fmt.Fprintf(w, "%.1f\t0\t-\n", cv.Offset*1e3)
						continue
					}
					lo, hi := cv.Lat[0], cv.Lat[0]
					for _, l := range cv.Lat {
						lo, hi = math.Min(lo, l), math.Max(hi, l)
					}
					fmt.Fprintf(w, "%.1f\t%d\t%g..%g\n", cv.Offset*1e3, len(cv.Lat), lo, hi)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				if out != "" {
					p, err := plot.Iso(curves)
					if err != nil {
						return err
					}
					return plot.Save(p, out)
				}
				return nil
			}

			limits, err := balance.AcceptabilityMap(cmd.Context(), c, mapCfg)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LON\tLOWER\tOPTIMUM\tUPPER")
			for _, l := range limits {
				fmt.Fprintf(w, "%g\t%s\t%s\t%s\n", l.Lon, lat(l.Lower), lat(l.Optimum), lat(l.Upper))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if out != "" {
				p, err := plot.Acceptability(limits)
				if err != nil {
					return err
				}
				return plot.Save(p, out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&iso, "iso", false, "trace optimal offset levels instead")
	cmd.Flags().StringVar(&out, "out", "", "also save the map as an image (png, svg, pdf)")
	cmd.Flags().Float64Var(&mapCfg.TiltDeg, "tilt", mapCfg.TiltDeg, "lateral tilt (deg)")
	cmd.Flags().Float64Var(&mapCfg.MaxErrorDeg, "max-error", mapCfg.MaxErrorDeg, "largest acceptable error (deg)")
	cmd.Flags().Float64Var(&mapCfg.LonStart, "lon-start", mapCfg.LonStart, "first longitude")
	cmd.Flags().Float64Var(&mapCfg.LonEnd, "lon-end", mapCfg.LonEnd, "last longitude")
	cmd.Flags().Float64Var(&mapCfg.LonStep, "lon-step", mapCfg.LonStep, "longitude step")
	return cmd
}

func lat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%g", v)
}
