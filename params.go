// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"github.com/hashicorp/cap/nativeauth/api"
)

// flowParams are the parameters shared by every interaction client call.
type flowParams struct {
	authority      string
	clientId       string
	correlationId  string
	challengeTypes []string
}

func newFlowParams(op string, c *Config, correlationId string) (flowParams, error) {
	switch {
	case c == nil:
		return flowParams{}, invalidArgument(op, correlationId, "config")
	case correlationId == "":
		return flowParams{}, invalidArgument(op, correlationId, "correlation id")
	case c.Authority == "":
		return flowParams{}, invalidArgument(op, correlationId, "authority")
	case c.ClientId == "":
		return flowParams{}, invalidArgument(op, correlationId, "client id")
	}
	p := flowParams{
		authority:      c.Authority,
		clientId:       c.ClientId,
		correlationId:  correlationId,
		challengeTypes: c.challengeTypes(),
	}
	if len(p.challengeTypes) == 0 {
		return flowParams{}, invalidArgument(op, correlationId, "challenge types")
	}
	return p, nil
}

func (p flowParams) base() api.RequestBase {
	return api.RequestBase{
		Authority:     p.authority,
		ClientId:      p.clientId,
		CorrelationId: p.correlationId,
	}
}

// startParams start a sign-in or a reset password flow.
type startParams struct {
	flowParams
	username string
	password Password
	scopes   []string
}

func newStartParams(op string, c *Config, correlationId, username string, password Password, scopes []string) (*startParams, error) {
	fp, err := newFlowParams(op, c, correlationId)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, invalidArgument(op, correlationId, "username")
	}
	scopes = c.scopes(scopes)
	if len(scopes) == 0 {
		return nil, invalidArgument(op, correlationId, "scopes")
	}
	return &startParams{flowParams: fp, username: username, password: password, scopes: scopes}, nil
}

// signUpStartParams start a sign-up flow.
type signUpStartParams struct {
	flowParams
	username   string
	password   Password
	attributes map[string]string
}

func newSignUpStartParams(op string, c *Config, correlationId, username string, password Password, attributes *UserAccountAttributes) (*signUpStartParams, error) {
	fp, err := newFlowParams(op, c, correlationId)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, invalidArgument(op, correlationId, "username")
	}
	return &signUpStartParams{flowParams: fp, username: username, password: password, attributes: attributes.ToMap()}, nil
}

// continuationParams carry the continuation token of a flow in progress
// and the proof submitted for its current step, if any.
type continuationParams struct {
	flowParams
	continuationToken string
	username          string
	scopes            []string
	code              string
	password          Password
	attributes        map[string]string
}

// newContinuationParams validates the token.  Proofs are validated by the
// with* methods.
func newContinuationParams(op string, c *Config, correlationId, continuationToken string) (*continuationParams, error) {
	fp, err := newFlowParams(op, c, correlationId)
	if err != nil {
		return nil, err
	}
	if continuationToken == "" {
		return nil, invalidArgument(op, correlationId, "continuation token")
	}
	return &continuationParams{flowParams: fp, continuationToken: continuationToken}, nil
}

func (p *continuationParams) withCode(op, code string) (*continuationParams, error) {
	if code == "" {
		return nil, invalidArgument(op, p.correlationId, "code")
	}
	p.code = code
	return p, nil
}

func (p *continuationParams) withPassword(op string, password Password) (*continuationParams, error) {
	if password == "" {
		return nil, invalidArgument(op, p.correlationId, "password")
	}
	p.password = password
	return p, nil
}

func (p *continuationParams) withAttributes(op string, attributes *UserAccountAttributes) (*continuationParams, error) {
	m := attributes.ToMap()
	if len(m) == 0 {
		return nil, invalidArgument(op, p.correlationId, "attributes")
	}
	p.attributes = m
	return p, nil
}

func (p *continuationParams) withUsername(op, username string) (*continuationParams, error) {
	if username == "" {
		return nil, invalidArgument(op, p.correlationId, "username")
	}
	p.username = username
	return p, nil
}

func (p *continuationParams) withScopes(c *Config, scopes []string) *continuationParams {
	p.scopes = c.scopes(scopes)
	return p
}

// refreshParams redeem a refresh token.
type refreshParams struct {
	flowParams
	refreshToken RefreshToken
	username     string
	scopes       []string
}

func newRefreshParams(op string, c *Config, correlationId string, refreshToken RefreshToken, username string, scopes []string) (*refreshParams, error) {
	fp, err := newFlowParams(op, c, correlationId)
	if err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, invalidArgument(op, correlationId, "refresh token")
	}
	if len(scopes) == 0 {
		return nil, newError(KindInvalidScopes, op, correlationId, "scopes are empty")
	}
	return &refreshParams{flowParams: fp, refreshToken: refreshToken, username: username, scopes: scopes}, nil
}
