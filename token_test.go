// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/cap/nativeauth/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactedTypes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"password", Password("secret"), RedactedPassword},
		{"access-token", AccessToken("secret"), RedactedAccessToken},
		{"refresh-token", RefreshToken("secret"), RedactedRefreshToken},
		{"id-token", IdToken("secret"), RedactedIdToken},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			assert.Equal(tt.want, fmt.Sprintf("%s", tt.value))
			assert.Equal(tt.want, fmt.Sprintf("%v", tt.value))
			b, err := json.Marshal(tt.value)
			require.NoError(err)
			assert.Equal(`"`+tt.want+`"`, string(b))
		})
	}
}

func testIdToken(t *testing.T, privateClaims map[string]interface{}) string {
	t.Helper()
	_, priv := api.TestGenerateKeys(t)
	now := time.Now()
	return api.TestSignJWT(t, priv, jwt.Claims{
		Subject:  "sub-alice",
		Issuer:   "https://login.example.com/tenant/v2.0",
		Audience: jwt.Audience{"client"},
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(time.Hour)),
	}, privateClaims)
}

func TestIdToken_Claims(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	raw := testIdToken(t, map[string]interface{}{"preferred_username": "alice"})

	var claims map[string]interface{}
	require.NoError(IdToken(raw).Claims(&claims))
	assert.Equal("alice", claims["preferred_username"])
	assert.Equal("sub-alice", claims["sub"])

	assert.ErrorIs(IdToken("").Claims(&claims), ErrInvalidParameter)
	assert.ErrorIs(IdToken(raw).Claims(nil), ErrNilParameter)
	assert.ErrorIs(IdToken("not.a.jwt").Claims(&claims), ErrInvalidParameter)
}

func TestNewAccount(t *testing.T) {
	t.Parallel()
	const authority = "https://login.example.com/tenant"
	tests := []struct {
		name     string
		username string
		idToken  func(t *testing.T) IdToken
		want     Account
		wantErr  bool
	}{
		{
			name:     "no-id-token",
			username: "alice",
			idToken:  func(*testing.T) IdToken { return "" },
			want:     Account{HomeAccountId: "alice", Environment: "login.example.com", Username: "alice"},
		},
		{
			name:     "oid-and-tid",
			username: "alice",
			idToken: func(t *testing.T) IdToken {
				return IdToken(testIdToken(t, map[string]interface{}{
					"oid":                "oid-1",
					"tid":                "tid-1",
					"preferred_username": "alice@example.com",
					"name":               "Alice",
				}))
			},
			want: Account{
				HomeAccountId:  "oid-1.tid-1",
				Environment:    "login.example.com",
				TenantId:       "tid-1",
				LocalAccountId: "oid-1",
				Username:       "alice@example.com",
				Name:           "Alice",
			},
		},
		{
			name:     "subject-only",
			username: "alice",
			idToken: func(t *testing.T) IdToken {
				return IdToken(testIdToken(t, map[string]interface{}{}))
			},
			want: Account{
				HomeAccountId:  "sub-alice",
				Environment:    "login.example.com",
				LocalAccountId: "sub-alice",
				Username:       "alice",
			},
		},
		{
			name:     "malformed",
			username: "alice",
			idToken:  func(*testing.T) IdToken { return "malformed" },
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := newAccount(authority, tt.username, tt.idToken(t))
			if tt.wantErr {
				require.Error(err)
				assert.ErrorIs(err, ErrInvalidParameter)
				return
			}
			require.NoError(err)
			claims := got.IdTokenClaims
			got.IdTokenClaims = nil
			assert.Equal(tt.want, *got)
			if tt.want.LocalAccountId != "" {
				assert.Equal("sub-alice", claims["sub"])
			}
		})
	}
}

func TestNewAuthenticationResult(t *testing.T) {
	t.Parallel()
	const authority = "https://login.example.com/tenant"
	scopes := []string{"openid", "offline_access"}

	t.Run("tokens", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		idToken := testIdToken(t, map[string]interface{}{"oid": "oid-1", "tid": "tid-1"})
		before := time.Now()
		r, err := newAuthenticationResult(authority, "corr", "alice", scopes, &api.TokenResponse{
			TokenType:    "Bearer",
			Scope:        "openid offline_access api://contoso/read",
			ExpiresIn:    3600,
			IdToken:      idToken,
			AccessToken:  "at",
			RefreshToken: "rt",
		})
		require.NoError(err)
		assert.Equal("oid-1.tid-1", r.Account.HomeAccountId)
		assert.Equal(AccessToken("at"), r.AccessToken)
		assert.Equal(RefreshToken("rt"), r.RefreshToken)
		assert.Equal([]string{"openid", "offline_access", "api://contoso/read"}, r.Scopes)
		assert.Equal("corr", r.CorrelationId)
		assert.WithinDuration(before.Add(time.Hour), r.ExpiresOn, 5*time.Second)

		tk := r.Token()
		assert.Equal("at", tk.AccessToken)
		assert.Equal("rt", tk.RefreshToken)
		assert.Equal("Bearer", tk.TokenType)
		assert.Equal(idToken, tk.Extra("id_token"))
		assert.True(tk.Valid())

		ts, err := r.TokenSource().Token()
		require.NoError(err)
		assert.Equal("at", ts.AccessToken)
	})
	t.Run("requested-scopes", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		r, err := newAuthenticationResult(authority, "corr", "alice", scopes, &api.TokenResponse{AccessToken: "at"})
		require.NoError(err)
		assert.Equal(scopes, r.Scopes)
		assert.True(r.ExpiresOn.IsZero())
		assert.Equal("alice", r.Account.HomeAccountId)
	})
	t.Run("no-tokens", func(t *testing.T) {
		assert := assert.New(t)
		_, err := newAuthenticationResult(authority, "corr", "alice", scopes, &api.TokenResponse{TokenType: "Bearer"})
		assert.ErrorIs(err, ErrUnknownApi)
		_, err = newAuthenticationResult(authority, "corr", "alice", scopes, nil)
		assert.ErrorIs(err, ErrUnknownApi)
	})
	t.Run("malformed-id-token", func(t *testing.T) {
		assert := assert.New(t)
		_, err := newAuthenticationResult(authority, "corr", "alice", scopes, &api.TokenResponse{AccessToken: "at", IdToken: "malformed"})
		assert.ErrorIs(err, ErrUnknownApi)
		assert.ErrorIs(err, ErrInvalidParameter)
	})
	t.Run("nil", func(t *testing.T) {
		var r *AuthenticationResult
		assert.Nil(t, r.Token())
	})
}
