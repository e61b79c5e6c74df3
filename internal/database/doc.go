// Package database provides the SQLite report archive of genoreport.
//
// Every generated report is stored as JSON together with the columns the
// history command lists and filters on (dataset, kind, method, timestamp,
// mean and missing rate). The archive lives in a single file under the XDG
// data directory and uses modernc.org/sqlite, a CGO-free driver.
package database
