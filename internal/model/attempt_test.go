package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViolationTrustDelta(t *testing.T) {
	cases := []struct {
		violation ViolationType
		delta     int
	}{
		{ViolationFaceNotDetected, -3},
		{ViolationMultipleFaces, -10},
		{ViolationLookingAway, -1},
		{ViolationTabSwitch, -2},
		{ViolationFullscreenExit, -2},
		{ViolationPhoneDetected, -5},
		{ViolationAudioAnomaly, -1},
		{ViolationType("SOMETHING_NEW"), -1},
		{ViolationType(""), -1},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.delta, tc.violation.TrustDelta(), "violation %q", tc.violation)
	}
}
