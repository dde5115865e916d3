package diagnostics

import "github.com/Iron-Ham/webdiag/internal/hostenv"

// Eligible reports whether diagnostics can be attached on host.
// A nil host is never eligible.
func Eligible(host hostenv.Context) bool {
	return host != nil && host.IsRunningInTargetEnvironment()
}
