// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type codedError struct{ code int }

func (e *codedError) Error() string { return fmt.Sprintf("exit %d", e.code) }
func (e *codedError) ExitCode() int { return e.code }

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", errors.New("boom"), "error: boom\n"},
		{"nil", nil, ""},
		{"coded", &codedError{code: 1}, ""},
		{"wrapped coded", fmt.Errorf("publish: %w", &codedError{code: 2}), ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buffer bytes.Buffer
			Report(&buffer, test.err)
			if got := buffer.String(); got != test.want {
				t.Errorf("Report = %q, want %q", got, test.want)
			}
		})
	}
}
