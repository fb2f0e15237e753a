// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"net/http"

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

// clientOptions is the set of available options for NewClient
type clientOptions struct {
	withHTTPClient *http.Client
	withCACert     string
	withLogger     hclog.Logger
}

func clientDefaults() clientOptions {
	return clientOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithHTTPClient provides an http.Client to send requests with. When it's
// not provided, a pooled client is created with NewHTTPClient.
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withHTTPClient = c
		}
	}
}

// WithCACert provides an optional PEM encoded CA certificate used to verify
// the server.  It's ignored when WithHTTPClient is also provided.
func WithCACert(caPEM string) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withCACert = caPEM
		}
	}
}

// WithLogger provides an optional logger. A nil logger is ignored.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
