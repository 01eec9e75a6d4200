package constants

type Decision string

const (
	Accepted Decision = "Accepted"
	Rejected Decision = "Rejected"
	Pending  Decision = "Pending"
)

var allDecisions = []Decision{Accepted, Rejected, Pending}

// Decisions lists the only values a claim verdict may carry.
func Decisions() []string {
	out := make([]string, len(allDecisions))
	for i, d := range allDecisions {
		out[i] = string(d)
	}
	return out
}

// IsValid is an exact, case-sensitive check. Nothing is coerced.
func (d Decision) IsValid() bool {
	for _, v := range allDecisions {
		if d == v {
			return true
		}
	}
	return false
}
