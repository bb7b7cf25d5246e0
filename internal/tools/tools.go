//go:build tools

// Package tools tracks code generation dependencies.
package tools

import (
	_ "github.com/dmarkham/enumer"
)
