// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides buffers and failing sinks for encoder
// tests: deterministic sine, silence and constant waveforms in both
// integer and float32 buffers, plus sinks that fail or short-write on
// demand.
package audiotest
