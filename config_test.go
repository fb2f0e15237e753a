// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"net/http"
	"testing"
	"time"

	"github.com/hashicorp/cap/nativeauth/api"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	tp := api.StartTestProvider(t)
	const authority = "https://login.example.com/tenant"
	logger := hclog.New(&hclog.LoggerOptions{Name: "test"})
	cache := NewMemoryAccountCache()
	httpClient := &http.Client{}

	t.Run("defaults", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewConfig(authority, "client")
		require.NoError(err)
		assert.Equal(authority, c.Authority)
		assert.Equal("client", c.ClientId)
		assert.Equal(DefaultChallengeTypes, c.ChallengeTypes)
		assert.Equal(DefaultScopes, c.Scopes)
		assert.Equal(DefaultMaxPollAttempts, c.MaxPollAttempts)
		assert.Zero(c.PollInterval)
		assert.NotNil(c.AccountCache)
		assert.NotNil(c.Logger)

		c.Scopes[0] = "changed"
		assert.Equal("openid", DefaultScopes[0])
	})
	t.Run("options", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewConfig(authority, "client",
			WithChallengeTypes(ChallengeTypePassword),
			WithScopes("api://contoso/read"),
			WithProviderCA(tp.CACert()),
			WithLogger(logger),
			WithHTTPClient(httpClient),
			WithAccountCache(cache),
			WithPollInterval(time.Second),
			WithMaxPollAttempts(3),
			nil,
		)
		require.NoError(err)
		assert.Equal([]ChallengeType{ChallengeTypePassword}, c.ChallengeTypes)
		assert.Equal([]string{"api://contoso/read"}, c.Scopes)
		assert.Equal(tp.CACert(), c.ProviderCA)
		assert.Equal(logger, c.Logger)
		assert.Equal(httpClient, c.HTTPClient)
		assert.Equal(cache, c.AccountCache)
		assert.Equal(time.Second, c.PollInterval)
		assert.Equal(3, c.MaxPollAttempts)
	})
	t.Run("invalid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewConfig("", "", WithChallengeTypes())
		require.Error(err)
		assert.Nil(c)
		assert.ErrorIs(err, ErrInvalidParameter)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	valid := func() *Config {
		return &Config{
			Authority:      "https://login.example.com/tenant",
			ClientId:       "client",
			ChallengeTypes: []ChallengeType{ChallengeTypeOOB},
		}
	}
	tests := []struct {
		name       string
		config     func() *Config
		wantErrIs  error
		wantErrors int
	}{
		{"valid", valid, nil, 0},
		{"nil", func() *Config { return nil }, ErrNilParameter, 0},
		{"empty", func() *Config { return &Config{} }, ErrInvalidParameter, 3},
		{"not-a-url", func() *Config { c := valid(); c.Authority = "://nope"; return c }, ErrInvalidParameter, 1},
		{"unsupported-scheme", func() *Config { c := valid(); c.Authority = "ftp://login.example.com"; return c }, ErrInvalidParameter, 1},
		{"missing-host", func() *Config { c := valid(); c.Authority = "https:///tenant"; return c }, ErrInvalidParameter, 1},
		{"unsupported-challenge-type", func() *Config { c := valid(); c.ChallengeTypes = []ChallengeType{"sms"}; return c }, ErrInvalidParameter, 1},
		{"empty-scope", func() *Config { c := valid(); c.Scopes = []string{"openid", ""}; return c }, ErrInvalidParameter, 1},
		{"invalid-ca", func() *Config { c := valid(); c.ProviderCA = "not a pem"; return c }, ErrInvalidCACert, 1},
		{"negative-poll", func() *Config { c := valid(); c.PollInterval = -1; c.MaxPollAttempts = -1; return c }, ErrInvalidParameter, 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			err := tt.config().Validate()
			if tt.wantErrIs == nil {
				require.NoError(err)
				return
			}
			require.Error(err)
			assert.ErrorIs(err, tt.wantErrIs)
			if tt.wantErrors > 0 {
				var merr *multierror.Error
				require.ErrorAs(err, &merr)
				assert.Len(merr.Errors, tt.wantErrors)
			}
		})
	}
}

func TestConfig_challengeTypes(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	c := &Config{ChallengeTypes: []ChallengeType{ChallengeTypePassword, ChallengeTypeOOB, ChallengeTypePassword}}
	assert.Equal([]string{"password", "oob", "redirect"}, c.challengeTypes())

	c = &Config{ChallengeTypes: []ChallengeType{ChallengeTypeRedirect}}
	assert.Equal([]string{"redirect"}, c.challengeTypes())
}

func TestConfig_scopes(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	c := &Config{}
	assert.Equal(DefaultScopes, c.scopes(nil))
	got := c.scopes(nil)
	got[0] = "changed"
	assert.Equal("openid", DefaultScopes[0])

	c.Scopes = []string{"openid", "api://contoso/read", "openid"}
	assert.Equal([]string{"openid", "api://contoso/read"}, c.scopes(nil))
	assert.Equal([]string{"user.read"}, c.scopes([]string{"user.read"}))
	assert.Equal([]string{"openid", "user.read"}, c.scopes([]string{" openid", "user.read ", "openid"}))
}

func TestConfig_newApiClient(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	tp := api.StartTestProvider(t)
	c, err := NewConfig(tp.Addr(), api.TestDefaultClientId, WithProviderCA(tp.CACert()))
	require.NoError(err)
	client, err := c.newApiClient()
	require.NoError(err)
	assert.NotNil(client)

	c.ProviderCA = "not a pem"
	_, err = c.newApiClient()
	assert.ErrorIs(err, api.ErrInvalidCACert)
}
