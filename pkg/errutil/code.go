// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package errutil

import "github.com/samber/oops"

// Code returns the oops code of err, or "" when err carries none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// HasCode reports whether err carries the given oops code.
func HasCode(err error, code string) bool {
	return Code(err) == code
}
