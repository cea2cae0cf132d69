// Package tool provides the domain model for assistant tools.
package tool

// SafetyLevel classifies the risk of executing a tool.
type SafetyLevel int

const (
	SafetySafe      SafetyLevel = iota // No side effects worth gating
	SafetyModerate                     // Touches local state, reversible
	SafetyDangerous                    // Arbitrary side effects
)

// String returns the string representation of the safety level.
func (s SafetyLevel) String() string {
	switch s {
	case SafetySafe:
		return "safe"
	case SafetyModerate:
		return "moderate"
	case SafetyDangerous:
		return "dangerous"
	default:
		return "unknown"
	}
}

// NeedsApproval reports whether executions of a tool at this level are
// subject to the approval policy.
func (s SafetyLevel) NeedsApproval() bool {
	return s >= SafetyModerate
}
