// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// GenerateNumericCode returns a random code of exactly `digits` decimal
// digits, suitable for activation and reset-password flows. Leading zeros
// are allowed, so the result is returned as a string.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("sec: code length must be positive, got %d", digits)
	}

	var builder strings.Builder
	builder.Grow(digits)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("sec: failed to read random digit: %w", err)
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}

	return builder.String(), nil
}
