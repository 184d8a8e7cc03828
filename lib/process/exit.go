// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit code.
// Commands return one after printing their own report, so the error
// itself is not echoed.
type exitCoder interface {
	ExitCode() int
}

// Exit reports err on stderr and terminates with code. A nil err exits
// zero.
func Exit(err error, code int) {
	if err == nil {
		os.Exit(0)
	}
	Report(os.Stderr, err)
	os.Exit(code)
}

// Report writes "error: err" to w unless err carries an exit code.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}
