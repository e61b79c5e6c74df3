// Package genotype provides the read-only genetic dataset consumed by reports.
//
// A Dataset holds a marker call matrix (individuals x loci, missing calls are
// NaN) stored in a gonum mat.Dense, the population label of every individual
// and a per-locus metadata table. Datasets are immutable: reports read them
// through accessors and return them unchanged.
//
// # File formats
//
// Genotype files are tab-separated. The header names the id and population
// columns followed by one column per locus:
//
//	#type=SNP
//	id	pop	L1	L2	L3
//	AA01	north	0	1	-
//	AA02	south	2	NA	1
//
// "-", "NA", "." and empty cells are missing. Locus metadata files are
// tab-separated too, keyed by a "locus" (or "AlleleID") column; numeric
// columns become metrics and the TrimmedSequence column is kept as text.
package genotype
