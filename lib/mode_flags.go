package lib

// CheckStrictness indicates how Check should behave when it encounters an
// error.
type CheckStrictness int
const (
	CrashOnError CheckStrictness = iota
	WarnOnError
)

func (s CheckStrictness) String() string {
	switch s {
	case CrashOnError: return "CrashOnError"
	case WarnOnError: return "WarnOnError"
	}
	return "Unknown"
}
