// Package log provides the verbosity-controlled logging used by genoreport,
// built on top of the standard slog package.
//
// Reports follow one verbosity convention shared by every command:
//
//	0  silent except fatal errors
//	1  start and end banners
//	2  progress messages (default)
//	3  summary results
//	5  full detail
//
// Each level maps to a slog level (LevelBanner, LevelProgress, LevelResult,
// LevelDetail). The Handler wraps any slog.Handler and drops records below
// the configured verbosity, so the same logger can feed a text or JSON sink.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, log.VerbosityProgress)
//	logger.Log(ctx, log.LevelBanner, "starting report", "kind", "callrate")
//
// Non-fatal issues are not logged but printed by a Warner on the report
// stream, highlighted in yellow when the stream is a terminal.
package log
