//go:build tools

// Package tools pins build and test tooling in go.mod.
package tools

import (
	_ "gotest.tools/gotestsum"
)
