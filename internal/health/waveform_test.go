// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveformRoundTrip(t *testing.T) {
	points := []WaveformPoint{
		{Timestamp: 1735689600.0, Value: 0.42},
		{Timestamp: 1735689600.004, Value: -0.13},
		{Timestamp: 1735689600.008, Value: 1.05},
	}

	payload := EncodePackedSamples(points)
	require.Len(t, payload, 3*16)

	decoded := DecodePackedSamples(payload)
	assert.Equal(t, points, decoded)
}

func TestWaveformDecodeIgnoresTrailingBytes(t *testing.T) {
	points := []WaveformPoint{{Timestamp: 1.0, Value: 2.0}}
	payload := EncodePackedSamples(points)

	// A truncated upload leaves a partial record at the tail.
	truncated := append(payload, 0xDE, 0xAD, 0xBE)

	decoded := DecodePackedSamples(truncated)
	assert.Equal(t, points, decoded)
}

func TestWaveformDecodeEmpty(t *testing.T) {
	assert.Empty(t, DecodePackedSamples(nil))
	assert.Empty(t, DecodePackedSamples(make([]byte, 15)))
}
