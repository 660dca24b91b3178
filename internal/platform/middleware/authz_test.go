// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalink/vitalink/internal/platform/ctxkey"
	"github.com/vitalink/vitalink/internal/platform/sec"
)

func requestWithClaims(claims *sec.AuthClaims) *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims == nil {
		return request
	}
	ctx := context.WithValue(request.Context(), ctxkey.KeyUser, claims)
	return request.WithContext(ctx)
}

func TestRequireAdminLevelTiers(t *testing.T) {
	cases := []struct {
		name     string
		claims   *sec.AuthClaims
		required sec.AdminLevel
		want     int
	}{
		{
			name:     "anonymous is rejected",
			claims:   nil,
			required: sec.LevelOperator,
			want:     http.StatusUnauthorized,
		},
		{
			name:     "member token is not an admin",
			claims:   &sec.AuthClaims{Kind: sec.KindUser, UserID: 7},
			required: sec.LevelOperator,
			want:     http.StatusUnauthorized,
		},
		{
			name:     "operator cannot reach super routes",
			claims:   &sec.AuthClaims{Kind: sec.KindAdmin, Level: int(sec.LevelOperator)},
			required: sec.LevelSuper,
			want:     http.StatusForbidden,
		},
		{
			name:     "operator reaches operator routes",
			claims:   &sec.AuthClaims{Kind: sec.KindAdmin, Level: int(sec.LevelOperator)},
			required: sec.LevelOperator,
			want:     http.StatusOK,
		},
		{
			name:     "super reaches super routes",
			claims:   &sec.AuthClaims{Kind: sec.KindAdmin, Level: int(sec.LevelSuper)},
			required: sec.LevelSuper,
			want:     http.StatusOK,
		},
	}

	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			RequireAdmin(tc.required)(next).ServeHTTP(recorder, requestWithClaims(tc.claims))

			assert.Equal(t, tc.want, recorder.Code)
		})
	}
}
