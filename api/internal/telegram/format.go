package telegram

import (
	"fmt"
	"strings"

	"medassist/api/internal/assist"
	"medassist/api/internal/util"
)

// Telegram rejects messages over 4096 characters.
const maxMessageRunes = 3900

func clamp(s string) string { return util.ClampRunes(s, maxMessageRunes) }

func formatReport(a assist.ReportAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Health score:* %d/100\n\n", a.HealthScore)
	b.WriteString(esc(a.Summary))
	if len(a.Predictions) > 0 {
		b.WriteString("\n\n*Possible conditions:*\n")
		for _, p := range a.Predictions {
			fmt.Fprintf(&b, "• %s (%s)\n", esc(p.Disease), percent(p.Probability))
		}
	}
	if len(a.Recommendations) > 0 {
		b.WriteString("\n*Recommendations:*\n")
		for _, r := range a.Recommendations {
			fmt.Fprintf(&b, "• %s\n", esc(r))
		}
	}
	return clamp(strings.TrimRight(b.String(), "\n"))
}

func formatSymptoms(s assist.SymptomPrediction) string {
	if len(s.Predictions) == 0 {
		return "I couldn't match these symptoms to anything specific. If they persist, see a doctor."
	}
	var b strings.Builder
	b.WriteString("*Possible conditions:*\n")
	for i, p := range s.Predictions {
		fmt.Fprintf(&b, "\n%d. *%s* (%s)\n", i+1, esc(p.Disease), percent(p.Probability))
		if d := strings.TrimSpace(p.Description); d != "" {
			b.WriteString(esc(d))
			b.WriteString("\n")
		}
		if sp := strings.TrimSpace(p.Specialist); sp != "" {
			fmt.Fprintf(&b, "See: %s\n", esc(sp))
		}
	}
	return clamp(strings.TrimRight(b.String(), "\n"))
}

func formatTips(t assist.Tips) string {
	if len(t.Tips) == 0 {
		return "No tips right now. Try again later."
	}
	var b strings.Builder
	for _, tip := range t.Tips {
		fmt.Fprintf(&b, "• %s\n", tip)
	}
	return clamp(strings.TrimRight(b.String(), "\n"))
}

func formatHospitals(h assist.HospitalLookup) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(h.Text))
	if len(h.Places) > 0 {
		b.WriteString("\n\n")
		for _, p := range h.Places {
			name := strings.TrimSpace(p.Name)
			if name == "" {
				name = "Map"
			}
			fmt.Fprintf(&b, "%s: %s\n", name, p.URI)
		}
	}
	return clamp(strings.TrimRight(b.String(), "\n"))
}

// percent accepts both 0..1 and 0..100 probabilities.
func percent(p float64) string {
	if p <= 1 {
		p *= 100
	}
	return fmt.Sprintf("%.0f%%", p)
}

func audioExt(mime string) string {
	switch util.BaseMIME(mime) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	}
	return ".bin"
}

// esc escapes legacy Markdown control characters.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}
