// Package modules contains the fixed set of built-in modules that give
// the registry its vocabulary: value mutation, audio playback, cues,
// scenes, pages and panels, messaging, calls, clips, queries, and time.
//
// Module code never reaches into the eval context by raw field access -
// every value lookup goes through the template package's reference
// resolution, so conditions and actions behave identically regardless of
// how the caller assembled the context.
//
// Authoring-level problems (an unknown cue name, a missing page) degrade
// to error-level log ops rather than Go errors: one bad reference must
// not abort a live trigger's remaining actions.
package modules
