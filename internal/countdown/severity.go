package countdown

// Severity is the visual state of the timer and loader elements.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// Elapsed-percent thresholds at which the elements escalate.
const (
	WarningThreshold = 50.0
	ErrorThreshold   = 80.0
)

// Class returns the class token an element carries for s.
func (s Severity) Class() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (s Severity) String() string {
	return s.Class()
}

// Classify maps an elapsed percentage to a severity. NaN classifies as Info.
func Classify(percent float64) Severity {
	switch {
	case percent >= ErrorThreshold:
		return Error
	case percent >= WarningThreshold:
		return Warning
	default:
		return Info
	}
}

// Escalate returns the severity after observing percent. It never goes down.
func Escalate(current Severity, percent float64) Severity {
	if next := Classify(percent); next > current {
		return next
	}
	return current
}
