// SPDX-License-Identifier: MIT
// Package measure: sentinel error set.
//
// Error policy (explicit and strict):
//   - Only package-level sentinel variables are exposed; callers branch
//     with errors.Is.
//   - Validation errors are configuration errors in the sense of the
//     problem object: they are detected eagerly and fail construction.
//   - Generator option constructors VALIDATE and PANIC on meaningless
//     inputs; generators themselves return only sentinels.

package measure

import "errors"

// ErrNoMeasurements indicates an empty measurement list. A synchronization
// problem over zero edges has no data matrices to assemble.
var ErrNoMeasurements = errors.New("measure: empty measurement list")

// ErrBadPoseIndex indicates a negative pose index or a self-loop (i == j);
// relative measurements relate two distinct poses.
var ErrBadPoseIndex = errors.New("measure: invalid pose index")

// ErrDimensionMismatch indicates inconsistent rotation/translation
// dimensions within a measurement or across the list.
var ErrDimensionMismatch = errors.New("measure: dimension mismatch")

// ErrBadPrecision indicates a rotational or translational precision that
// is not strictly positive and finite.
var ErrBadPrecision = errors.New("measure: precision must be positive and finite")

// ErrTooFewPoses indicates a generator size below the topology minimum.
var ErrTooFewPoses = errors.New("measure: too few poses")

// ErrBadDimension indicates a generator group dimension below 2.
var ErrBadDimension = errors.New("measure: group dimension must be >= 2")
