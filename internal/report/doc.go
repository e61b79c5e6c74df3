// Package report provides report output for genoreport runs.
//
// This package contains writers for different output formats:
//   - SimpleWriter: fixed-format text with tables for terminal display
//   - MarkdownWriter: GitHub Flavored Markdown for sharing
//   - JSONWriter: structured JSON output for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
