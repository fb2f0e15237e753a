// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"errors"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, tp *TestProvider) *HTTPClient {
	t.Helper()
	c, err := NewClient(
		WithCACert(tp.CACert()),
		WithLogger(hclog.New(&hclog.LoggerOptions{Name: t.Name(), Level: hclog.Trace})),
	)
	require.NoError(t, err)
	return c
}

func testBase(tp *TestProvider, correlationId string) RequestBase {
	return RequestBase{
		Authority:     tp.Addr(),
		ClientId:      TestDefaultClientId,
		CorrelationId: correlationId,
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	t.Run("invalid-ca", func(t *testing.T) {
		assert := assert.New(t)
		c, err := NewClient(WithCACert("not a pem"))
		assert.ErrorIs(err, ErrInvalidCACert)
		assert.Nil(c)
	})
	t.Run("http-client-wins", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := StartTestProvider(t)
		c, err := NewClient(WithHTTPClient(tp.HTTPClient()), WithCACert("ignored"), nil)
		require.NoError(err)
		assert.Equal(tp.HTTPClient(), c.client)
	})
}

func TestHTTPClient_SignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tp := StartTestProvider(t)
	tp.AddUser(TestUser{Username: "alice@example.com", Password: "correct-horse"})
	tp.AddUser(TestUser{Username: "bob@example.com"})
	c := testClient(t, tp)

	t.Run("password", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		start, err := c.Initiate(ctx, &InitiateRequest{
			RequestBase:    testBase(tp, "corr-1"),
			Username:       "alice@example.com",
			ChallengeTypes: []string{ChallengeTypePassword, ChallengeTypeRedirect},
		})
		require.NoError(err)
		require.NotEmpty(start.ContinuationToken)
		assert.Equal("corr-1", tp.LastCorrelationId())

		challenge, err := c.Challenge(ctx, &ChallengeRequest{
			RequestBase:       testBase(tp, "corr-1"),
			ContinuationToken: start.ContinuationToken,
			ChallengeTypes:    []string{ChallengeTypePassword, ChallengeTypeRedirect},
		})
		require.NoError(err)
		assert.Equal(ChallengeKindContinuationToken, challenge.Kind)
		assert.Equal(ChallengeTypePassword, challenge.ChallengeType)

		_, err = c.Token(ctx, &TokenRequest{
			RequestBase:       testBase(tp, "corr-1"),
			GrantType:         GrantTypePassword,
			ContinuationToken: challenge.ContinuationToken,
			Password:          "wrong",
			Scopes:            []string{"openid"},
		})
		var errResp *ErrorResponse
		require.True(errors.As(err, &errResp))
		assert.Equal("invalid_grant", errResp.Code)
		assert.Equal(400, errResp.StatusCode)
		assert.NotEmpty(errResp.TraceId)

		tk, err := c.Token(ctx, &TokenRequest{
			RequestBase:       testBase(tp, "corr-1"),
			GrantType:         GrantTypePassword,
			ContinuationToken: challenge.ContinuationToken,
			Password:          "correct-horse",
			Scopes:            []string{"openid", "offline_access"},
		})
		require.NoError(err)
		assert.Equal("Bearer", tk.TokenType)
		assert.Equal("openid offline_access", tk.Scope)
		assert.NotEmpty(tk.AccessToken)
		assert.NotEmpty(tk.RefreshToken)

		parsed, err := jwt.ParseSigned(tk.IdToken, []jose.SignatureAlgorithm{jose.ES256})
		require.NoError(err)
		claims := map[string]interface{}{}
		require.NoError(parsed.UnsafeClaimsWithoutVerification(&claims))
		assert.Equal("alice@example.com", claims["preferred_username"])

		refreshed, err := c.Token(ctx, &TokenRequest{
			RequestBase:  testBase(tp, "corr-2"),
			GrantType:    GrantTypeRefreshToken,
			RefreshToken: tk.RefreshToken,
		})
		require.NoError(err)
		assert.NotEqual(tk.AccessToken, refreshed.AccessToken)
	})
	t.Run("code", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		start, err := c.Initiate(ctx, &InitiateRequest{
			RequestBase:    testBase(tp, "corr-3"),
			Username:       "bob@example.com",
			ChallengeTypes: []string{ChallengeTypeOOB, ChallengeTypeRedirect},
		})
		require.NoError(err)
		challenge, err := c.Challenge(ctx, &ChallengeRequest{
			RequestBase:       testBase(tp, "corr-3"),
			ContinuationToken: start.ContinuationToken,
			ChallengeTypes:    []string{ChallengeTypeOOB, ChallengeTypeRedirect},
		})
		require.NoError(err)
		assert.Equal(ChallengeKindCodeSent, challenge.Kind)
		assert.Equal("email", challenge.ChallengeChannel)
		assert.Equal(len(TestDefaultCode), challenge.CodeLength)

		_, err = c.Token(ctx, &TokenRequest{
			RequestBase:       testBase(tp, "corr-3"),
			GrantType:         GrantTypeOOB,
			ContinuationToken: challenge.ContinuationToken,
			Oob:               "00000000",
		})
		var errResp *ErrorResponse
		require.True(errors.As(err, &errResp))
		assert.Equal("invalid_oob_value", errResp.SubError)

		tk, err := c.Token(ctx, &TokenRequest{
			RequestBase:       testBase(tp, "corr-3"),
			GrantType:         GrantTypeOOB,
			ContinuationToken: challenge.ContinuationToken,
			Oob:               TestDefaultCode,
		})
		require.NoError(err)
		assert.NotEmpty(tk.IdToken)
	})
	t.Run("user-not-found", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := c.Initiate(ctx, &InitiateRequest{
			RequestBase:    testBase(tp, "corr-4"),
			Username:       "nobody@example.com",
			ChallengeTypes: []string{ChallengeTypeRedirect},
		})
		var errResp *ErrorResponse
		require.True(errors.As(err, &errResp))
		assert.Equal("user_not_found", errResp.Code)
	})
	t.Run("invalid-request", func(t *testing.T) {
		assert := assert.New(t)
		before := tp.TotalRequests()
		_, err := c.Initiate(ctx, &InitiateRequest{
			RequestBase: testBase(tp, ""),
			Username:    "alice@example.com",
		})
		assert.ErrorIs(err, ErrInvalidParameter)
		assert.Equal(before, tp.TotalRequests())
	})
}

func TestHTTPClient_Canceled(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	tp := StartTestProvider(t)
	tp.AddUser(TestUser{Username: "alice@example.com", Password: "correct-horse"})
	c := testClient(t, tp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Initiate(ctx, &InitiateRequest{
		RequestBase:    testBase(tp, "corr-1"),
		Username:       "alice@example.com",
		ChallengeTypes: []string{ChallengeTypePassword},
	})
	assert.ErrorIs(err, context.Canceled)
}

func TestHTTPClient_ResetPassword(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	tp := StartTestProvider(t)
	tp.AddUser(TestUser{Username: "alice@example.com", Password: "correct-horse"})
	tp.SetResetPollStatuses(PollStatusSucceeded)
	c := testClient(t, tp)
	base := testBase(tp, "corr-1")

	start, err := c.ResetPasswordStart(ctx, &InitiateRequest{
		RequestBase:    base,
		Username:       "alice@example.com",
		ChallengeTypes: []string{ChallengeTypeOOB, ChallengeTypeRedirect},
	})
	require.NoError(err)
	challenge, err := c.ResetPasswordChallenge(ctx, &ChallengeRequest{
		RequestBase:       base,
		ContinuationToken: start.ContinuationToken,
		ChallengeTypes:    []string{ChallengeTypeOOB, ChallengeTypeRedirect},
	})
	require.NoError(err)
	assert.Equal(ChallengeKindCodeSent, challenge.Kind)
	cont, err := c.ResetPasswordContinue(ctx, &ContinueRequest{
		RequestBase:       base,
		ContinuationToken: challenge.ContinuationToken,
		GrantType:         GrantTypeOOB,
		Oob:               TestDefaultCode,
	})
	require.NoError(err)

	_, err = c.ResetPasswordSubmit(ctx, &SubmitRequest{
		RequestBase:       base,
		ContinuationToken: cont.ContinuationToken,
		NewPassword:       "short",
	})
	var errResp *ErrorResponse
	require.True(errors.As(err, &errResp))
	assert.Equal("password_too_weak", errResp.SubError)

	submit, err := c.ResetPasswordSubmit(ctx, &SubmitRequest{
		RequestBase:       base,
		ContinuationToken: cont.ContinuationToken,
		NewPassword:       "battery-staple",
	})
	require.NoError(err)
	assert.Equal(1, submit.PollInterval)

	poll, err := c.ResetPasswordPollCompletion(ctx, &PollCompletionRequest{
		RequestBase:       base,
		ContinuationToken: submit.ContinuationToken,
	})
	require.NoError(err)
	assert.Equal(PollStatusSucceeded, poll.Status)
	assert.NotEmpty(poll.ContinuationToken)

	u, ok := tp.User("alice@example.com")
	require.True(ok)
	assert.Equal("battery-staple", u.Password)
}

func TestHTTPClient_SignUp(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	tp := StartTestProvider(t)
	tp.SetSignUpRequirements(false, []UserAttribute{{Name: "displayName", Type: "string", Required: true}})
	c := testClient(t, tp)
	base := testBase(tp, "corr-1")

	start, err := c.SignUpStart(ctx, &SignUpStartRequest{
		RequestBase:    base,
		Username:       "carol@example.com",
		Password:       "correct-horse",
		ChallengeTypes: []string{ChallengeTypeOOB, ChallengeTypePassword, ChallengeTypeRedirect},
	})
	require.NoError(err)
	challenge, err := c.SignUpChallenge(ctx, &ChallengeRequest{
		RequestBase:       base,
		ContinuationToken: start.ContinuationToken,
		ChallengeTypes:    []string{ChallengeTypeOOB, ChallengeTypePassword, ChallengeTypeRedirect},
	})
	require.NoError(err)
	assert.Equal(ChallengeKindCodeSent, challenge.Kind)

	_, err = c.SignUpContinue(ctx, &ContinueRequest{
		RequestBase:       base,
		ContinuationToken: challenge.ContinuationToken,
		GrantType:         GrantTypeOOB,
		Oob:               TestDefaultCode,
	})
	var errResp *ErrorResponse
	require.True(errors.As(err, &errResp))
	assert.Equal("attributes_required", errResp.Code)
	require.Len(errResp.RequiredAttributes, 1)
	assert.Equal("displayName", errResp.RequiredAttributes[0].Name)

	_, err = c.SignUpContinue(ctx, &ContinueRequest{
		RequestBase:       base,
		ContinuationToken: errResp.ContinuationToken,
		GrantType:         GrantTypeAttributes,
		Attributes:        map[string]string{"displayName": " "},
	})
	var invalid *ErrorResponse
	require.True(errors.As(err, &invalid))
	assert.Equal([]string{"displayName"}, invalid.InvalidAttributeNames())

	done, err := c.SignUpContinue(ctx, &ContinueRequest{
		RequestBase:       base,
		ContinuationToken: errResp.ContinuationToken,
		GrantType:         GrantTypeAttributes,
		Attributes:        map[string]string{"displayName": "Carol"},
	})
	require.NoError(err)
	assert.NotEmpty(done.ContinuationToken)

	_, ok := tp.User("carol@example.com")
	assert.True(ok)
}
