// Package config provides configuration structures and utilities for genoreport.
// It defines the report options (plot styling, save destination, output
// format), the optional configuration file with per-dataset overrides and
// the working-directory policy used for saved charts.
package config
