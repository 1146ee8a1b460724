package assist

import "net/http"

// Escalation sends a failed call once more to a fallback model when the
// primary's status matches.
type Escalation struct {
	When     func(status int) bool
	Fallback string
}

// OnUnavailable escalates on 503 only.
func OnUnavailable(fallback string) Escalation {
	return Escalation{
		When:     func(status int) bool { return status == http.StatusServiceUnavailable },
		Fallback: fallback,
	}
}

func (e Escalation) applies(err error) bool {
	if e.When == nil || e.Fallback == "" {
		return false
	}
	status, ok := StatusOf(err)
	return ok && e.When(status)
}
