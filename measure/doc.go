// SPDX-License-Identifier: MIT

// Package measure defines the relative-pose measurement type consumed by
// the sesync problem object, its validation rules, and deterministic
// synthetic pose-graph generators for tests, benchmarks and examples.
//
// Overview:
//
//   - RelativePoseMeasurement carries one edge of the measurement graph:
//     an ordered pose pair (I, J), the measured relative rotation and
//     translation of frame J expressed in frame I, and the rotational and
//     translational precision weights. Measurements are immutable once
//     given; the problem object copies what it derives and never mutates
//     the input.
//   - Validate infers the pose count and group dimension from a
//     measurement list and rejects malformed input with sentinel errors
//     before any matrix assembly happens.
//   - Cycle and Grid build ground-truth pose sets over standard
//     topologies and emit exact or noise-perturbed measurements. With a
//     fixed seed the output is bit-for-bit reproducible, which keeps
//     golden tests meaningful.
//
// Error handling (sentinel errors, matched via errors.Is):
//
//   - ErrNoMeasurements: the measurement list is empty.
//   - ErrBadPoseIndex: negative index or a self-loop edge (i == j).
//   - ErrDimensionMismatch: rotation/translation dimensions disagree
//     across the list or within one measurement.
//   - ErrBadPrecision: a precision weight is not strictly positive or not
//     finite.
//   - ErrTooFewPoses, ErrBadDimension: generator parameter domains.
package measure
