// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stream

import "runtime/debug"

const root = "github.com/LynnColeArt/stream"

// Version returns the version of the stream module and its checksum. The
// returned values are only valid in binaries built with module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return moduleVersion(b)
}

// moduleVersion finds this module in b, as the main module for the stream
// command or as a dependency otherwise. A replaced module reports the
// replacement, marked with a trailing "*" when it is a local directory.
func moduleVersion(b *debug.BuildInfo) (version, sum string) {
	if b.Main.Path == root {
		return b.Main.Version, b.Main.Sum
	}
	for _, m := range b.Deps {
		if m.Path != root {
			continue
		}
		if r := m.Replace; r != nil {
			if r.Version == "" {
				return m.Version + "*", ""
			}
			return r.Version, r.Sum
		}
		return m.Version, m.Sum
	}
	return "", ""
}
