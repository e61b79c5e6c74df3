// Package main provides the entry point for the genoreport CLI.
//
// genoreport prints descriptive reports for population-genetics datasets:
// call rate, tag length, read depth, reproducibility and minor allele
// frequency, each with a quantile threshold table and a boxplot/histogram
// chart.
//
// Usage:
//
//	genoreport callrate <genotypes.tsv>
//	genoreport callrate --method ind --save-name cr --save-type png <genotypes.tsv>
//	genoreport history
//
// See --help for all available options.
package main

// main is the entry point for genoreport.
func main() {
	Execute()
}
