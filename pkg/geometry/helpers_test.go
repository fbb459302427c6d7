package geometry

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/df07/go-direct-raytracer/pkg/core"
)

const tolerance = 1e-5

func assertClose(t *testing.T, name string, expected, got float32) {
	t.Helper()
	if math32.Abs(expected-got) > tolerance {
		t.Errorf("Expected %s=%f, got %f", name, expected, got)
	}
}

func assertVecClose(t *testing.T, name string, expected, got core.Vec3) {
	t.Helper()
	if expected.Subtract(got).Length() > tolerance {
		t.Errorf("Expected %s %v, got %v", name, expected, got)
	}
}
