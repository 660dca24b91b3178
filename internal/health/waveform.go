// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package health

import (
	"encoding/binary"
	"math"

	"github.com/vitalink/vitalink/internal/platform/constants"
)

// WaveformPoint is one decoded sample of a recorded strip.
type WaveformPoint struct {
	// Timestamp is a Unix timestamp with fractional seconds.
	Timestamp float64 `json:"t"`
	// Value is the measured voltage in millivolts.
	Value float64 `json:"v"`
}

// EncodePackedSamples packs points into the binary file format: each record
// is two little-endian float64s (timestamp, value) at a fixed
// [constants.WaveformSampleStride] byte stride.
func EncodePackedSamples(points []WaveformPoint) []byte {
	payload := make([]byte, len(points)*constants.WaveformSampleStride)
	for i, point := range points {
		offset := i * constants.WaveformSampleStride
		binary.LittleEndian.PutUint64(payload[offset:], math.Float64bits(point.Timestamp))
		binary.LittleEndian.PutUint64(payload[offset+8:], math.Float64bits(point.Value))
	}
	return payload
}

// DecodePackedSamples reads every whole record out of a packed waveform file.
// A trailing partial record (a truncated upload) is ignored rather than
// failing the whole strip.
func DecodePackedSamples(payload []byte) []WaveformPoint {
	count := len(payload) / constants.WaveformSampleStride
	points := make([]WaveformPoint, 0, count)

	for i := 0; i < count; i++ {
		offset := i * constants.WaveformSampleStride
		points = append(points, WaveformPoint{
			Timestamp: math.Float64frombits(binary.LittleEndian.Uint64(payload[offset:])),
			Value:     math.Float64frombits(binary.LittleEndian.Uint64(payload[offset+8:])),
		})
	}

	return points
}
