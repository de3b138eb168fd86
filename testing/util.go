package testing

import (
	"testing"
	"time"

	"github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/carcatalog/catalog/mock"
)

var (
	brandOneID   = mock.SequentialID(1)
	brandTwoID   = mock.SequentialID(2)
	brandThreeID = mock.SequentialID(3)
	carOneID     = mock.SequentialID(101)
	carTwoID     = mock.SequentialID(102)
	carThreeID   = mock.SequentialID(103)
	newID        = mock.SequentialID(900)

	seedTime = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	now      = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
)

func diffPlatformErrors(name string, actual, expected error, t *testing.T) {
	t.Helper()

	if expected == nil && actual == nil {
		return
	}

	if expected == nil && actual != nil {
		t.Fatalf("%s failed, unexpected error %s", name, actual.Error())
	}

	if expected != nil && actual == nil {
		t.Fatalf("%s failed, expected error %s but received nil", name, expected.Error())
	}

	if errors.ErrorCode(expected) != errors.ErrorCode(actual) {
		t.Fatalf("%s failed, expected error code %q but received %q", name, errors.ErrorCode(expected), errors.ErrorCode(actual))
	}

	if errors.ErrorMessage(expected) != errors.ErrorMessage(actual) {
		t.Fatalf("%s failed, expected error message %q but received %q", name, errors.ErrorMessage(expected), errors.ErrorMessage(actual))
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}
