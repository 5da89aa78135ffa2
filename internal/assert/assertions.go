package assert

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// Equal verifies equality of two objects.
func Equal[T any](t testing.TB, a, b T) {
	if !reflect.DeepEqual(a, b) {
		t.Helper()
		t.Fatalf("%v != %v", a, b)
	}
}

// NotEqual verifies objects are not equal.
func NotEqual[T any](t testing.TB, a T, b T) {
	if reflect.DeepEqual(a, b) {
		t.Helper()
		t.Fatalf("%v == %v", a, b)
	}
}

// True verifies the condition holds.
func True(t testing.TB, cond bool, msg string) {
	if !cond {
		t.Helper()
		t.Fatalf("Condition is false: %s", msg)
	}
}

// NoError fails the test if err is not nil.
func NoError(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatalf("Unexpected error: %v", err)
	}
}

// ErrorIs checks whether any error in err's chain matches target.
func ErrorIs(t testing.TB, err, target error) {
	if !errors.Is(err, target) {
		t.Helper()
		t.Fatalf("Error %v is not %v", err, target)
	}
}

// ErrorContains checks whether the given error contains the specified string.
func ErrorContains(t testing.TB, err error, str string) {
	if err == nil {
		t.Helper()
		t.Fatalf("Error is nil")
	} else if !strings.Contains(err.Error(), str) {
		t.Helper()
		t.Fatalf("Error does not contain string: %s", str)
	}
}

// Panics checks whether the given function panics.
func Panics(t testing.TB, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Helper()
			t.Fatalf("Function did not panic")
		}
	}()
	f()
}
