// Package gold implements golden files.
package gold

import (
	"bytes"
	"flag"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
)

const defaultDir = "_golden"

// Update reports whether golden files update is requested.
//
// Call Init() in TestMain to propagate.
var Update bool

// Init should be called in TestMain.
func Init() {
	flag.BoolVar(&Update, "update", false, "update golden files")
}

// Path returns path to golden file.
func Path(elems ...string) string {
	return filepath.Join(
		append([]string{defaultDir}, elems...)...,
	)
}

// ReadFile reads golden file.
func ReadFile(t testing.TB, elems ...string) []byte {
	t.Helper()

	p := Path(elems...)
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("golden file %s: %+v", path.Join(elems...), err)
	}

	return data
}

// name defaults golden file name to test name with ext.
func name(t testing.TB, ext string, elems []string) []string {
	if len(elems) > 0 {
		return elems
	}
	n := strings.ReplaceAll(t.Name(), "/", "_")
	return []string{n + ext}
}

func compare(t testing.TB, data []byte, elems []string) {
	t.Helper()

	if Update {
		p := Path(elems...)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("golden dir: %+v", err)
		}
		if err := os.WriteFile(p, data, 0o600); err != nil {
			t.Fatalf("golden file %s: %+v", path.Join(elems...), err)
		}
		return
	}

	expected := ReadFile(t, elems...)
	if !bytes.Equal(expected, data) {
		t.Fatalf("golden file %s mismatch:\n%x\n!=\n%x", path.Join(elems...), data, expected)
	}
}

// Bytes compares data with raw golden file, named after the test by
// default.
func Bytes(t testing.TB, data []byte, elems ...string) {
	t.Helper()
	compare(t, data, name(t, ".raw", elems))
}

// Str compares s with text golden file, named after the test by default.
func Str(t testing.TB, s string, elems ...string) {
	t.Helper()
	compare(t, []byte(s), name(t, ".txt", elems))
}
