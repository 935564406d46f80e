package mock

import (
	"fmt"
	"reflect"
)

// Interfaces - Public

// Matcher is the argument-matching contract used by the With-style
// assertions. gomega matchers satisfy it directly.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// Types - Public

type anyMatcher struct{}

// Functions - Public

// Any returns a matcher that matches any value.
func Any() Matcher {
	return anyMatcher{}
}

func (anyMatcher) Match(any) (bool, error) { return true, nil }

func (anyMatcher) FailureMessage(any) string { return "" }

// MatchValue checks if actual matches expected.
// If expected implements the Matcher interface, uses its Match method.
// Otherwise, uses reflect.DeepEqual for comparison.
// Returns (success, errorMessage). If success is true, errorMessage is empty.
func MatchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			return false, matcher.FailureMessage(actual)
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

// Functions - Private

// matchArgs compares an argument list element-wise against expectations.
func matchArgs(actual, expected []any) (bool, string) {
	if len(actual) != len(expected) {
		return false, fmt.Sprintf("expected %d args, got %d", len(expected), len(actual))
	}

	for i := range expected {
		if ok, msg := MatchValue(actual[i], expected[i]); !ok {
			return false, fmt.Sprintf("arg %d: %s", i, msg)
		}
	}

	return true, ""
}
