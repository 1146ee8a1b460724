package assist

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const disclaimer = "You are not a doctor; remind the user to consult a healthcare professional for diagnosis and treatment."

const reportPreamble = `You are a medical report assistant. Read the attached medical report or the text below and
explain it in plain language for a non-specialist. Return JSON only, matching the declared schema:
- summary: a short plain-language summary of the findings;
- predictions: possible conditions with probability in percent (0-100);
- healthScore: an integer from 0 (critical) to 100 (excellent);
- recommendations: concrete next steps.
` + disclaimer

const symptomsPreamble = `You are a symptom checker. Given the symptom description, list the most likely conditions.
For each: disease name, probability in percent (0-100), a one-sentence description and the kind of
specialist to consult. Return JSON only, matching the declared schema.
` + disclaimer

const chatPreamble = `You are a friendly health assistant. Answer briefly and clearly, ask a follow-up question when the
information is insufficient, and never prescribe medication doses.
` + disclaimer

const tipsPreamble = `You are a wellness coach. Produce five short, practical health tips (one sentence each).
Return JSON only, matching the declared schema.`

const hospitalsPreamble = `You help people find medical care. List nearby hospitals and clinics with their address and,
when known, opening hours and emergency services. Keep the answer short.`

// profileContext renders the personalization block appended to preambles.
func profileContext(p *Profile) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	if p.Age > 0 {
		fmt.Fprintf(&b, "\n- age: %d", p.Age)
	}
	if p.Weight > 0 {
		fmt.Fprintf(&b, "\n- weight: %.1f kg", p.Weight)
	}
	conds := lo.Compact(lo.Map(p.Conditions, func(c string, _ int) string { return strings.TrimSpace(c) }))
	if len(conds) > 0 {
		fmt.Fprintf(&b, "\n- known conditions: %s", strings.Join(lo.Uniq(conds), ", "))
	}
	if s := strings.TrimSpace(p.Symptoms); s != "" {
		fmt.Fprintf(&b, "\n- current symptoms: %s", s)
	}
	if b.Len() == 0 {
		return ""
	}
	return "\n\nUser context:" + b.String()
}

func tipsRequest(p *Profile) string {
	if ctx := profileContext(p); ctx != "" {
		return "Give tips tailored to this person." + ctx
	}
	return "Give general tips for a healthy adult."
}

func hospitalsRequest(geo *Geo, query string) string {
	switch {
	case query != "" && geo != nil:
		return fmt.Sprintf("%s near latitude %.6f, longitude %.6f", query, geo.Lat, geo.Lng)
	case query != "":
		return query
	default:
		return fmt.Sprintf("Hospitals near latitude %.6f, longitude %.6f", geo.Lat, geo.Lng)
	}
}
