package tool

import (
	"strings"
)

// failureLine renders a remote-call error as the single line of text the
// model sees: tool name, then the failure taxonomy and detail. The domain
// sentinels (authentication failed, request timed out, remote server error,
// malformed response, rate limit exceeded, api key not configured) are
// already the leading component of the wrapped error message.
func failureLine(toolName string, err error) string {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	return toolName + ": " + msg
}
