// Package model defines the data structures shared by the report generator,
// the report writers and the report archive.
//
// This package contains the following main types:
//   - Kind and Method: which statistic a report computes and over which axis
//   - Report: the tables produced by one report run
//   - Summary, ThresholdRow, PopulationMean, IndividualValue: report sections
//
// The models are serializable to JSON for report output and archive storage.
package model
