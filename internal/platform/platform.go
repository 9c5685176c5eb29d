// Package platform filters function definitions by their @os attributes
// against the current operating system.
package platform

import (
	"runtime"

	"github.com/runfile-sh/run/internal/ast"
)

// MatchesCurrent reports whether a definition with the given attributes is
// available on the current platform. A definition with no @os attributes is
// available everywhere; otherwise at least one attribute must match.
func MatchesCurrent(attributes []ast.Attribute) bool {
	return Matches(attributes, runtime.GOOS)
}

// Matches is MatchesCurrent with an explicit GOOS value, for tests.
func Matches(attributes []ast.Attribute, goos string) bool {
	hasOsAttr := false
	for _, attr := range attributes {
		osAttr, ok := attr.(*ast.OsAttr)
		if !ok {
			continue
		}
		hasOsAttr = true
		if platformMatches(osAttr.Platform, goos) {
			return true
		}
	}
	return !hasOsAttr
}

func platformMatches(p ast.OsPlatform, goos string) bool {
	switch p {
	case ast.OsWindows:
		return goos == "windows"
	case ast.OsLinux:
		return goos == "linux"
	case ast.OsMacOS:
		return goos == "darwin"
	case ast.OsUnix:
		return goos == "linux" || goos == "darwin"
	default:
		return false
	}
}
