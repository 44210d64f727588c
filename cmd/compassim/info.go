package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/config"
	"github.com/san-kum/compassim/internal/experiment"
	"github.com/san-kum/compassim/internal/sheet"
)

func presetsCommand() *cobra.Command {
	var locations string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "list compasses, locations, campaigns and integrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COMPASS\tINERTIA (kg m²)\tVISC (N m s)\tOFFSET (mm)")
			for _, name := range config.ListCompasses() {
				c, err := config.CompassPreset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%.4e\t%.4e\t%.2f\n", name, c.MomentOfInertia(), c.ViscousCoefficient(), c.Offset*1e3)
			}
			if catalog != "" {
				compasses, err := sheet.Compasses(catalog)
				if err != nil {
					return err
				}
				for _, c := range compasses {
					fmt.Fprintf(w, "%s (catalog)\t%.4e\t%.4e\t%.2f\n", c.Name, c.MomentOfInertia(), c.ViscousCoefficient(), c.Offset*1e3)
				}
			}
			fmt.Fprintln(w)

			fmt.Fprintln(w, "LOCATION\tFIELD")
			for _, name := range config.ListLocations() {
				f, err := config.LocationPreset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", name, f)
			}
			if locations != "" {
				fields, err := sheet.Locations(locations)
				if err != nil {
					return err
				}
				for _, f := range fields {
					fmt.Fprintf(w, "%s (sheet)\t%s\n", f.Name(), f)
				}
			}
			fmt.Fprintln(w)

			fmt.Fprintf(w, "CAMPAIGNS\t%v\n", config.ListPresets())
			fmt.Fprintf(w, "INTEGRATORS\t%v\n", experiment.NewRegistry().ListIntegrators())
			fmt.Fprintf(w, "TESTS\t%v\n", experiment.AllTests())
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&locations, "locations", "", "xlsx location sheet")
	return cmd
}

func magnetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "magnet",
		Short: "volume, mass and inertia of a magnet shape",
	}

	floats := func(args []string) ([]float64, error) {
		out := make([]float64, len(args))
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	show := func(m compass.Magnet) {
		fmt.Printf("volume:  %.12e m³\nmass:    %.12e kg\ninertia: %.12e kg m²\n", m.Volume, m.Mass, m.Inertia)
	}

	cylinder := &cobra.Command{
		Use:   "cylinder [radius] [length] [center_distance] [density]",
		Short: "two parallel cylinders either side of the pivot",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := floats(args)
			if err != nil {
				return err
			}
			show(compass.DoubleCylinderMagnet(v[0], v[1], v[2], v[3]))
			return nil
		},
	}
	prism := &cobra.Command{
		Use:   "prism [length] [width] [thickness] [density]",
		Short: "rectangular bar centered on the pivot",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := floats(args)
			if err != nil {
				return err
			}
			show(compass.PrismMagnet(v[0], v[1], v[2], v[3]))
			return nil
		},
	}
	cmd.AddCommand(cylinder, prism)
	return cmd
}
