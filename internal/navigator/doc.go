// Package navigator defines the core types and decision logic shared
// across subsystems: the search orchestrator, the URL decision engine
// and the job controller.
package navigator
