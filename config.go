// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/cap/nativeauth/api"
	"github.com/hashicorp/cap/nativeauth/internal/strutils"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Config represents the configuration of a public client application using
// native authentication.
type Config struct {
	// Authority is the base URL of the identity provider's tenant, for
	// example: https://contoso.ciamlogin.com/contoso.onmicrosoft.com
	Authority string

	// ClientId is the public client's application id
	ClientId string

	// ChallengeTypes are the challenge types the application can handle.
	// The redirect challenge type is always sent in addition to these.
	ChallengeTypes []ChallengeType

	// Scopes are requested when a flow's inputs don't provide any.
	Scopes []string

	// ProviderCA is an optional CA cert to use when sending requests to the provider.
	ProviderCA string

	// PollInterval overrides the server's reset password poll_interval when
	// it's not zero.
	PollInterval time.Duration

	// MaxPollAttempts bounds reset password completion polling.
	MaxPollAttempts int

	// HTTPClient is an optional client used for every request.  When it's
	// nil, one is created using the ProviderCA.
	HTTPClient *http.Client

	// AccountCache stores the accounts of completed sign-ins.
	AccountCache AccountCache

	// Logger is an optional logger.  A null logger is used when it's nil.
	Logger hclog.Logger
}

// configOptions is the set of available options for NewConfig
type configOptions struct {
	withChallengeTypes  []ChallengeType
	withScopes          []string
	withProviderCA      string
	withLogger          hclog.Logger
	withHTTPClient      *http.Client
	withAccountCache    AccountCache
	withPollInterval    time.Duration
	withMaxPollAttempts int
}

// configDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func configDefaults() configOptions {
	return configOptions{
		withChallengeTypes:  append([]ChallengeType(nil), DefaultChallengeTypes...),
		withScopes:          append([]string(nil), DefaultScopes...),
		withMaxPollAttempts: DefaultMaxPollAttempts,
	}
}

func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// NewConfig composes a new config.
//
// Supported options: WithChallengeTypes, WithScopes, WithProviderCA,
// WithLogger, WithHTTPClient, WithAccountCache, WithPollInterval,
// WithMaxPollAttempts
func NewConfig(authority, clientId string, opt ...Option) (*Config, error) {
	const op = "nativeauth.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		Authority:       authority,
		ClientId:        clientId,
		ChallengeTypes:  opts.withChallengeTypes,
		Scopes:          opts.withScopes,
		ProviderCA:      opts.withProviderCA,
		PollInterval:    opts.withPollInterval,
		MaxPollAttempts: opts.withMaxPollAttempts,
		HTTPClient:      opts.withHTTPClient,
		AccountCache:    opts.withAccountCache,
		Logger:          opts.withLogger,
	}
	if c.AccountCache == nil {
		c.AccountCache = NewMemoryAccountCache()
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return c, nil
}

// Validate the config.  Every problem found is returned, not only the first
// one.
func (c *Config) Validate() error {
	const op = "nativeauth.(Config).Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var retErr *multierror.Error
	switch {
	case c.Authority == "":
		retErr = multierror.Append(retErr, fmt.Errorf("%s: authority is empty: %w", op, ErrInvalidParameter))
	default:
		u, err := url.Parse(c.Authority)
		switch {
		case err != nil:
			retErr = multierror.Append(retErr, fmt.Errorf("%s: authority %q is invalid: %w", op, c.Authority, ErrInvalidParameter))
		case !strutils.StrListContains([]string{"https", "http"}, u.Scheme) || u.Host == "":
			retErr = multierror.Append(retErr, fmt.Errorf("%s: authority %q is not an http or https URL: %w", op, c.Authority, ErrInvalidParameter))
		}
	}
	if c.ClientId == "" {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter))
	}
	if len(c.ChallengeTypes) == 0 {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: challenge types are empty: %w", op, ErrInvalidParameter))
	}
	for _, ct := range c.ChallengeTypes {
		switch ct {
		case ChallengeTypePassword, ChallengeTypeOOB, ChallengeTypeRedirect:
		default:
			retErr = multierror.Append(retErr, fmt.Errorf("%s: unsupported challenge type %q: %w", op, ct, ErrInvalidParameter))
		}
	}
	for _, s := range c.Scopes {
		if s == "" {
			retErr = multierror.Append(retErr, fmt.Errorf("%s: scopes contain an empty scope: %w", op, ErrInvalidParameter))
			break
		}
	}
	if c.ProviderCA != "" {
		if ok := x509.NewCertPool().AppendCertsFromPEM([]byte(c.ProviderCA)); !ok {
			retErr = multierror.Append(retErr, fmt.Errorf("%s: %w", op, ErrInvalidCACert))
		}
	}
	if c.PollInterval < 0 {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: poll interval is negative: %w", op, ErrInvalidParameter))
	}
	if c.MaxPollAttempts < 0 {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: max poll attempts is negative: %w", op, ErrInvalidParameter))
	}
	return retErr.ErrorOrNil()
}

// challengeTypes returns the wire challenge types: the configured ones,
// deduplicated, followed by redirect.
func (c *Config) challengeTypes() []string {
	types := make([]string, 0, len(c.ChallengeTypes)+1)
	for _, ct := range c.ChallengeTypes {
		types = append(types, string(ct))
	}
	types = append(types, api.ChallengeTypeRedirect)
	return strutils.RemoveDuplicatesStable(types, true)
}

// scopes returns the requested scopes, falling back to the config's and then
// to DefaultScopes.
func (c *Config) scopes(requested []string) []string {
	switch {
	case len(requested) > 0:
		return strutils.RemoveDuplicatesStable(requested, false)
	case len(c.Scopes) > 0:
		return strutils.RemoveDuplicatesStable(c.Scopes, false)
	default:
		return append([]string(nil), DefaultScopes...)
	}
}

func (c *Config) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger
}

func (c *Config) maxPollAttempts() int {
	if c.MaxPollAttempts <= 0 {
		return DefaultMaxPollAttempts
	}
	return c.MaxPollAttempts
}

// newApiClient creates an api.HTTPClient for the config.
func (c *Config) newApiClient() (*api.HTTPClient, error) {
	const op = "nativeauth.(Config).newApiClient"
	client, err := api.NewClient(
		api.WithHTTPClient(c.HTTPClient),
		api.WithCACert(c.ProviderCA),
		api.WithLogger(c.logger().Named("api")),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}
