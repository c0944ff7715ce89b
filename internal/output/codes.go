// Package output provides the typed error taxonomy shared by every layer.
package output

// Exit codes for the CLI entry points.
const (
	ExitOK         = 0 // Success
	ExitConfig     = 1 // Missing/malformed configuration
	ExitValidation = 2 // Input failed validation
	ExitNotFound   = 3 // Remote resource not found
	ExitAuth       = 4 // Credentials rejected
	ExitForbidden  = 5 // Insufficient permission
	ExitRateLimit  = 6 // Rate limited (429)
	ExitNetwork    = 7 // Timeout or connection failure
	ExitAPI        = 8 // Server returned an error
)

// Error codes carried on the Error struct.
const (
	CodeConfig      = "config"
	CodeValidation  = "validation"
	CodeNotFound    = "not_found"
	CodeAuth        = "auth"
	CodeForbidden   = "forbidden"
	CodeRateLimit   = "rate_limit"
	CodeTimeout     = "timeout"
	CodeUnavailable = "unavailable"
	CodeAPI         = "api_error"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeConfig:
		return ExitConfig
	case CodeValidation:
		return ExitValidation
	case CodeNotFound:
		return ExitNotFound
	case CodeAuth:
		return ExitAuth
	case CodeForbidden:
		return ExitForbidden
	case CodeRateLimit:
		return ExitRateLimit
	case CodeTimeout, CodeUnavailable:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	default:
		return ExitAPI
	}
}
