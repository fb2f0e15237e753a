// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"net/http"
	"time"

	"github.com/hashicorp/cap/nativeauth/api"
	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// WithChallengeTypes provides an optional list of challenge types the
// application supports. The redirect challenge type is always added.
//
// Valid for: NewConfig
func WithChallengeTypes(types ...ChallengeType) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withChallengeTypes = types
		}
	}
}

// WithScopes provides an optional list of scopes.
//
// Valid for: NewConfig and AccountInfo.AccessToken.  For AccessToken, an
// explicitly empty list is an error.
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withScopes = scopes
		case *accessTokenOptions:
			v.withScopes = scopes
			v.withScopesSet = true
		}
	}
}

// WithProviderCA provides an optional CA cert to use when sending requests
// to the provider.
//
// Valid for: NewConfig
func WithProviderCA(caPEM string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = caPEM
		}
	}
}

// WithLogger provides an optional logger.
//
// Valid for: NewConfig
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withLogger = l
		}
	}
}

// WithHTTPClient provides an optional http.Client used for every request.
//
// Valid for: NewConfig
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withHTTPClient = c
		}
	}
}

// WithAccountCache provides an optional AccountCache.  An in-memory cache is
// used by default.
//
// Valid for: NewConfig
func WithAccountCache(c AccountCache) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAccountCache = c
		}
	}
}

// WithPollInterval provides an optional interval between reset password
// completion polls that overrides the server's poll_interval.
//
// Valid for: NewConfig
func WithPollInterval(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withPollInterval = d
		}
	}
}

// WithMaxPollAttempts provides an optional bound on reset password completion
// polls.
//
// Valid for: NewConfig
func WithMaxPollAttempts(n int) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withMaxPollAttempts = n
		}
	}
}

// WithApiClient provides an optional api.Client used instead of one built
// from the Config.
//
// Valid for: NewStandardController and NewPublicClientApplication
func WithApiClient(c api.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*controllerOptions); ok {
			o.withApiClient = c
		}
	}
}

// WithController provides an optional Controller used instead of a
// StandardController.
//
// Valid for: NewPublicClientApplication
func WithController(c Controller) Option {
	return func(o interface{}) {
		if o, ok := o.(*applicationOptions); ok {
			o.withController = c
		}
	}
}

// WithForceRefresh skips the cached access token and always uses the refresh
// token.
//
// Valid for: AccountInfo.AccessToken
func WithForceRefresh() Option {
	return func(o interface{}) {
		if o, ok := o.(*accessTokenOptions); ok {
			o.withForceRefresh = true
		}
	}
}

// controllerOptions is the set of available options for NewStandardController
type controllerOptions struct {
	withApiClient api.Client
}

func controllerDefaults() controllerOptions {
	return controllerOptions{}
}

func getControllerOpts(opt ...Option) controllerOptions {
	opts := controllerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// applicationOptions is the set of available options for NewPublicClientApplication
type applicationOptions struct {
	withController Controller
}

func applicationDefaults() applicationOptions {
	return applicationOptions{}
}

func getApplicationOpts(opt ...Option) applicationOptions {
	opts := applicationDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// accessTokenOptions is the set of available options for AccountInfo.AccessToken
type accessTokenOptions struct {
	withScopes       []string
	withScopesSet    bool
	withForceRefresh bool
}

func accessTokenDefaults() accessTokenOptions {
	return accessTokenOptions{}
}

func getAccessTokenOpts(opt ...Option) accessTokenOptions {
	opts := accessTokenDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
