package exporter

import "errors"

// Sentinel errors for the exporter package.
var (
	// ErrNoSessionFactory is returned when Export is called without a factory.
	ErrNoSessionFactory = errors.New("exporter: no session factory")

	// ErrInference is returned when schema inference fails.
	ErrInference = errors.New("exporter: schema inference failed")

	// ErrNoResult is returned when inference succeeds without a result.
	ErrNoResult = errors.New("exporter: inference returned no result")

	// ErrWriteOutput is returned when the output file cannot be written.
	ErrWriteOutput = errors.New("exporter: failed to write output")
)
