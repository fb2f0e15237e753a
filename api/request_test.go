// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRequest_Validate(t *testing.T) {
	t.Parallel()
	base := RequestBase{Authority: "https://login.example.com/tenant", ClientId: "client", CorrelationId: "corr"}
	tests := []struct {
		name    string
		req     *TokenRequest
		wantErr error
	}{
		{name: "nil", req: nil, wantErr: ErrNilParameter},
		{name: "missing-authority", req: &TokenRequest{RequestBase: RequestBase{ClientId: "c", CorrelationId: "c"}}, wantErr: ErrInvalidParameter},
		{name: "missing-token", req: &TokenRequest{RequestBase: base, GrantType: GrantTypePassword, Password: "p"}, wantErr: ErrInvalidParameter},
		{name: "missing-password", req: &TokenRequest{RequestBase: base, GrantType: GrantTypePassword, ContinuationToken: "ct"}, wantErr: ErrInvalidParameter},
		{name: "missing-oob", req: &TokenRequest{RequestBase: base, GrantType: GrantTypeOOB, ContinuationToken: "ct"}, wantErr: ErrInvalidParameter},
		{name: "missing-username", req: &TokenRequest{RequestBase: base, GrantType: GrantTypeContinuationToken, ContinuationToken: "ct"}, wantErr: ErrInvalidParameter},
		{name: "missing-refresh", req: &TokenRequest{RequestBase: base, GrantType: GrantTypeRefreshToken}, wantErr: ErrInvalidParameter},
		{name: "unknown-grant", req: &TokenRequest{RequestBase: base, GrantType: "device_code", ContinuationToken: "ct"}, wantErr: ErrInvalidParameter},
		{name: "valid-password", req: &TokenRequest{RequestBase: base, GrantType: GrantTypePassword, ContinuationToken: "ct", Password: "p"}},
		{name: "valid-refresh", req: &TokenRequest{RequestBase: base, GrantType: GrantTypeRefreshToken, RefreshToken: "rt"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTokenRequest_form(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	r := &TokenRequest{
		RequestBase:       RequestBase{ClientId: "client"},
		GrantType:         GrantTypeOOB,
		ContinuationToken: "ct",
		Oob:               "1234",
		Password:          "not-sent",
		Scopes:            []string{"openid", "profile"},
	}
	f := r.form()
	assert.Equal("client", f.Get("client_id"))
	assert.Equal("oob", f.Get("grant_type"))
	assert.Equal("1234", f.Get("oob"))
	assert.Equal("openid profile", f.Get("scope"))
	assert.Equal("ct", f.Get("continuation_token"))
	assert.Empty(f.Get("password"))
}

func TestSignUpStartRequest_form(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	r := &SignUpStartRequest{
		RequestBase:    RequestBase{ClientId: "client"},
		Username:       "alice@example.com",
		Attributes:     map[string]string{"city": "Paris"},
		ChallengeTypes: []string{ChallengeTypeOOB, ChallengeTypeRedirect},
	}
	f, err := r.form()
	require.NoError(err)
	assert.Equal(`{"city":"Paris"}`, f.Get("attributes"))
	assert.Equal("oob redirect", f.Get("challenge_type"))
	assert.False(f.Has("password"))
}

func TestContinueRequest_Validate(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	base := RequestBase{Authority: "https://login.example.com", ClientId: "client", CorrelationId: "corr"}

	assert.ErrorIs((&ContinueRequest{RequestBase: base, GrantType: GrantTypeOOB, Oob: "1"}).Validate(), ErrInvalidParameter)
	assert.ErrorIs((&ContinueRequest{RequestBase: base, ContinuationToken: "ct", GrantType: GrantTypeAttributes}).Validate(), ErrInvalidParameter)
	assert.ErrorIs((&ContinueRequest{RequestBase: base, ContinuationToken: "ct", GrantType: GrantTypeRefreshToken}).Validate(), ErrInvalidParameter)
	assert.NoError((&ContinueRequest{RequestBase: base, ContinuationToken: "ct", GrantType: GrantTypePassword, Password: "p"}).Validate())
}

func TestChallengeResponse_setKind(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := &ChallengeResponse{ContinuationToken: "ct", ChallengeType: ChallengeTypePassword}
	r.setKind()
	assert.Equal(ChallengeKindContinuationToken, r.Kind)

	r = &ChallengeResponse{ContinuationToken: "ct", ChallengeType: ChallengeTypeOOB, CodeLength: 8}
	r.setKind()
	assert.Equal(ChallengeKindCodeSent, r.Kind)
	assert.Equal("code_sent", r.Kind.String())
}

func TestErrorResponse_Error(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	e := &ErrorResponse{Code: "invalid_grant", SubError: "invalid_oob_value", Description: "bad code"}
	assert.Equal("invalid_grant (invalid_oob_value): bad code", e.Error())
	assert.Equal("expired_token", (&ErrorResponse{Code: "expired_token"}).Error())
}
