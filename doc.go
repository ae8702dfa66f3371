// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stream measures sustained memory bandwidth with the four STREAM
// kernels:
//
//	Copy:  c = a
//	Scale: b = s·c
//	Add:   c = a + b
//	Triad: a = b + s·c
//
// The three working arrays are carved from one aligned arena and should be
// several times larger than the last-level cache. Each kernel pass is split
// across a persistent worker pool with static partitions and timed from the
// coordinating goroutine. Repetition 0 is discarded and the best of the
// remaining repetitions determines the reported rate.
//
// After the timed loop the arrays are checked against a reference model that
// replays the same recurrence in the same element type. With the default
// canonical seeds (a=1, b=2, c=0) every element must match the oracle exactly;
// with random seeds each element is replayed from its own starting value.
// A run fails validation when the average relative error of any array
// exceeds 1e-6 (float32) or 1e-13 (float64).
//
// Basic usage:
//
//	cfg := stream.DefaultConfig()
//	res, err := stream.Run(cfg)
//	if err != nil {
//		return err
//	}
//	if err := res.Err(); err != nil {
//		// validation failed
//	}
package stream
