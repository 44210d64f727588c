package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/compassim/internal/experiment"
)

// Styles are derived from CurrentTheme at render time so theme switches
// apply immediately.
func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(CurrentTheme.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(CurrentTheme.Muted)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(16)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
}

func dialStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Padding(1, 2)
}

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Muted).
		Padding(1, 2)
}

func hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Italic(true).MarginTop(1)
}

func statusStyle(ok bool) lipgloss.Style {
	c := CurrentTheme.Warning
	if ok {
		c = CurrentTheme.Success
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

func row(label, value string) string {
	return labelStyle().Render(label) + valueStyle().Render(value) + "\n"
}

func optional(v *float64, format string) string {
	if v == nil {
		return "absent"
	}
	return fmt.Sprintf(format, *v)
}

// RenderReport formats an experiment report for the terminal.
func RenderReport(r *experiment.Report) string {
	var s strings.Builder
	s.WriteString(headerStyle().Render(fmt.Sprintf("%s @ %s", r.Compass, r.Location)) + "\n\n")

	s.WriteString(row("integrator", r.Integrator))
	s.WriteString(row("inertia", fmt.Sprintf("%.4e kg m²", r.MomentOfInertia)))
	s.WriteString(row("viscous coef", fmt.Sprintf("%.4e N m s", r.ViscousCoef)))
	s.WriteString(row("magnetic term", fmt.Sprintf("%.4f 1/s²", r.Coefficients.Magnetic)))
	s.WriteString(row("viscous term", fmt.Sprintf("%.4f 1/s", r.Coefficients.Viscous)))
	s.WriteString(row("excitation", fmt.Sprintf("%.4f 1/s²", r.Coefficients.Excitation)))
	s.WriteString(row("natural freq", fmt.Sprintf("%.3f rad/s", r.NaturalFrequency)))
	s.WriteString(row("damping ratio", fmt.Sprintf("%.3f", r.DampingRatio)))
	s.WriteString("\n")

	settled := r.Tho != nil
	s.WriteString(labelStyle().Render("tho") + statusStyle(settled).Render(optional(r.Tho, "%.3f s")) + "\n")
	s.WriteString(row("stab_amp", optional(r.StabAmp, "%.3f°")))
	s.WriteString(row("steady amp", fmt.Sprintf("%.3f°", r.SteadyAmplitude)))
	s.WriteString(row("phase", fmt.Sprintf("%.3f rad", r.Phase)))
	if r.ExperimentalCrossing != nil || r.ExperimentalSettling != nil {
		s.WriteString(row("measured cross", optional(r.ExperimentalCrossing, "%.3f s")))
		s.WriteString(row("measured settle", optional(r.ExperimentalSettling, "%.3f s")))
	}

	names := make([]string, 0, len(r.Runs))
	for name := range r.Runs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		run := r.Runs[name]
		s.WriteString("\n" + valueStyle().Render(name) + "\n")
		s.WriteString(row("  samples", fmt.Sprintf("%d (%s)", run.Samples, run.Unit)))
		s.WriteString(row("  steps", fmt.Sprintf("%d, %d rejected", run.Steps, run.Rejected)))
		s.WriteString(row("  energy drift", fmt.Sprintf("%.3e", run.EnergyDrift)))
	}

	return panelStyle().Render(s.String())
}
