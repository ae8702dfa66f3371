// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command stream measures sustained memory bandwidth
package main

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/LynnColeArt/stream/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(cli.GetExitCode(err))
	}
	atexit.Exit(cli.ExitSuccess)
}
