// Package actions contains the portal's mutating operations. Every operation
// follows the same shape: gate -> validate -> single logical write -> result.
// Operations never return a Go error or panic past their boundary; every
// outcome, including store failures, becomes an ActionResult the presentation
// layer can render.
package actions

import "time"

// NowFunc supplies the current time. Injected through Deps for testability.
type NowFunc func() time.Time

// ActionResult is the uniform outcome of a portal operation.
type ActionResult struct {
	Message string
	Error   bool
}

// ok builds a success result.
func ok(message string) ActionResult {
	return ActionResult{Message: message}
}

// fail builds a failure result. The message is always human-readable; the
// caller is never left without feedback.
func fail(message string) ActionResult {
	return ActionResult{Message: message, Error: true}
}
