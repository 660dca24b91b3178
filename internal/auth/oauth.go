// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// SocialProfile is the provider-neutral identity returned by a verifier.
type SocialProfile struct {
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
}

// SocialVerifier resolves provider access tokens into verified profiles.
//
// # Why an interface?
//
// The live implementation talks to Facebook and Google over the network;
// service tests swap in a stub so login flows stay unit-testable.
type SocialVerifier interface {
	FacebookProfile(ctx context.Context, accessToken string) (*SocialProfile, error)
	GoogleProfile(ctx context.Context, accessToken string) (*SocialProfile, error)
}

// HTTPSocialVerifier is the production [SocialVerifier].
//
// Google verification goes through the official API client; Facebook's Graph
// API has no maintained Go SDK, so it is a plain authenticated GET.
type HTTPSocialVerifier struct {
	httpClient *http.Client
}

// NewSocialVerifier builds the production verifier.
func NewSocialVerifier() *HTTPSocialVerifier {
	return &HTTPSocialVerifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

const facebookProfileURL = "https://graph.facebook.com/me"

// FacebookProfile resolves a Facebook user access token via the Graph API.
func (verifier *HTTPSocialVerifier) FacebookProfile(ctx context.Context, accessToken string) (*SocialProfile, error) {
	query := url.Values{}
	query.Set("fields", "id,email,first_name,last_name")
	query.Set("access_token", accessToken)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, facebookProfileURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("oauth_facebook_request_failed: %w", err)
	}

	response, err := verifier.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("oauth_facebook_call_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth_facebook_rejected: status %d", response.StatusCode)
	}

	var payload struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("oauth_facebook_decode_failed: %w", err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("oauth_facebook_empty_identity")
	}

	return &SocialProfile{
		ProviderID: payload.ID,
		Email:      payload.Email,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
	}, nil
}

// GoogleProfile resolves a Google OAuth access token through the userinfo API.
func (verifier *HTTPSocialVerifier) GoogleProfile(ctx context.Context, accessToken string) (*SocialProfile, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})

	service, err := googleoauth.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("oauth_google_service_failed: %w", err)
	}

	userinfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("oauth_google_rejected: %w", err)
	}
	if userinfo.Id == "" {
		return nil, fmt.Errorf("oauth_google_empty_identity")
	}

	return &SocialProfile{
		ProviderID: userinfo.Id,
		Email:      userinfo.Email,
		FirstName:  userinfo.GivenName,
		LastName:   userinfo.FamilyName,
	}, nil
}
