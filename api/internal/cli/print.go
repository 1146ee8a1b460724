package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"medassist/api/internal/assist"
)

func printReport(cmd *cobra.Command, a assist.ReportAnalysis) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n\n", heading("Health score:"), scoreColor(a.HealthScore))
	fmt.Fprintln(w, a.Summary)
	if len(a.Predictions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading("Possible conditions"))
		for _, p := range a.Predictions {
			fmt.Fprintf(w, "  %-32s %s\n", p.Disease, percent(p.Probability))
		}
	}
	if len(a.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading("Recommendations"))
		for _, r := range a.Recommendations {
			fmt.Fprintf(w, "  %s %s\n", good("•"), r)
		}
	}
}

func printSymptoms(cmd *cobra.Command, s assist.SymptomPrediction) {
	w := cmd.OutOrStdout()
	if len(s.Predictions) == 0 {
		fmt.Fprintln(w, warn("No specific condition matched. If symptoms persist, see a doctor."))
		return
	}
	for i, p := range s.Predictions {
		fmt.Fprintf(w, "%s %s\n", heading(fmt.Sprintf("%d. %s", i+1, p.Disease)), faint(percent(p.Probability)))
		if d := strings.TrimSpace(p.Description); d != "" {
			fmt.Fprintf(w, "   %s\n", d)
		}
		if sp := strings.TrimSpace(p.Specialist); sp != "" {
			fmt.Fprintf(w, "   see: %s\n", sp)
		}
	}
}

func printHospitals(cmd *cobra.Command, h assist.HospitalLookup) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, strings.TrimSpace(h.Text))
	if len(h.Places) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, p := range h.Places {
		fmt.Fprintf(w, "  %s %s\n", good(p.Name), faint(p.URI))
	}
}

func scoreColor(score int) string {
	s := fmt.Sprintf("%d/100", score)
	switch {
	case score >= 75:
		return good(s)
	case score >= 50:
		return warn(s)
	default:
		return bad(s)
	}
}

// percent accepts both 0..1 and 0..100 probabilities.
func percent(p float64) string {
	if p <= 1 {
		p *= 100
	}
	return fmt.Sprintf("%.0f%%", p)
}
