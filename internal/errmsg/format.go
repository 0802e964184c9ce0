// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpConfigLoad Op = "load configuration"
	OpDepsCheck  Op = "find required tools"

	// Download session
	OpDownloadStart    Op = "start download"
	OpDownloadScratch  Op = "prepare download directory"
	OpDownloadFinalize Op = "finalize download"
	OpTranscode        Op = "convert to FLAC"

	// Cookies
	OpCookiesRead   Op = "read cookies file"
	OpCookiesDelete Op = "delete cookies file"

	// History
	OpHistoryOpen   Op = "open download history"
	OpHistoryRecord Op = "record download"
	OpHistoryList   Op = "list download history"

	// Inspection
	OpInspectScan Op = "scan directory"
	OpInspectTags Op = "read file tags"

	// Prompts
	OpPrompt Op = "read input"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
