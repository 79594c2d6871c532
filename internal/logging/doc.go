// Package logging builds the slog loggers used across the pipeline.
//
// Two output formats are supported: a human-oriented console format for
// interactive runs and JSON for log files or machine consumption. Helpers
// standardize attribute keys (component, item, stage) so per-item log lines
// stay greppable across the generation and normalization stages.
package logging
