// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for numeric policy and comparisons.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that resolves the effective config.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultAbsTolerance is the absolute tolerance (atol) used by AllClose.
	DefaultAbsTolerance = 1e-8

	// DefaultRelTolerance is the relative tolerance (rtol) used by AllClose.
	DefaultRelTolerance = 1e-5

	// DefaultValidateNaNInf toggles strict finite-value validation in Set and
	// in the From* constructors. Measurement matrices routinely carry NaN for
	// missing values, so the default is off.
	DefaultValidateNaNInf = false
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicEpsilonInvalid = "matrix: WithEpsilon: atol must be finite, non-negative"
	panicRelTolInvalid  = "matrix: WithRelativeTolerance: rtol must be finite, non-negative"
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept `...Option` and resolve
// them via gatherOptions.
type Options struct {
	atol           float64 // DefaultAbsTolerance
	rtol           float64 // DefaultRelTolerance
	validateNaNInf bool    // DefaultValidateNaNInf
}

// WithEpsilon sets the absolute tolerance used by AllClose.
// Panics when eps is negative or non-finite.
func WithEpsilon(eps float64) Option {
	if isNonFinite(eps) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.atol = eps }
}

// WithRelativeTolerance sets the relative tolerance used by AllClose.
// Panics when rtol is negative or non-finite.
func WithRelativeTolerance(rtol float64) Option {
	if isNonFinite(rtol) || rtol < 0 {
		panic(panicRelTolInvalid)
	}

	return func(o *Options) { o.rtol = rtol }
}

// WithValidateNaNInf makes constructors and Set reject NaN and ±Inf.
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		atol:           DefaultAbsTolerance,
		rtol:           DefaultRelTolerance,
		validateNaNInf: DefaultValidateNaNInf,
	}
}

// gatherOptions applies opts over defaults in order; nil options are skipped.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// isNonFinite reports NaN or ±Inf.
func isNonFinite(x float64) bool { return math.IsNaN(x) || math.IsInf(x, 0) }
