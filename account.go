// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
	"errors"
	"slices"

	"github.com/hashicorp/cap/nativeauth/internal/strutils"
)

// AccountInfo is a signed in account.  It's returned by a completed sign-in
// and by GetCurrentAccount.
type AccountInfo struct {
	controller    *StandardController
	account       Account
	idToken       IdToken
	correlationId string
}

func newAccountInfo(op string, c *StandardController, correlationId string, account Account, idToken IdToken) (*AccountInfo, error) {
	switch {
	case c == nil:
		return nil, invalidArgument(op, correlationId, "controller")
	case correlationId == "":
		return nil, invalidArgument(op, correlationId, "correlation id")
	case account.HomeAccountId == "":
		return nil, invalidArgument(op, correlationId, "home account id")
	}
	return &AccountInfo{
		controller:    c,
		account:       account,
		idToken:       idToken,
		correlationId: correlationId,
	}, nil
}

// Account returns the account.
func (i *AccountInfo) Account() Account { return i.account }

// Username returns the account's username.
func (i *AccountInfo) Username() string { return i.account.Username }

// IdToken returns the account's raw id_token, if any.
func (i *AccountInfo) IdToken() IdToken { return i.idToken }

// Claims retrieves the id_token claims.  The signature is not verified.
func (i *AccountInfo) Claims(claims interface{}) error { return i.idToken.Claims(claims) }

// CorrelationId returns the correlation id of the flow which produced the
// account info.
func (i *AccountInfo) CorrelationId() string { return i.correlationId }

// AccessToken returns an access token for the account.  The cached token is
// returned when it's still valid and was issued for the scopes, otherwise the
// refresh token is redeemed and the cache updated.
//
// Supported options: WithScopes, WithForceRefresh
func (i *AccountInfo) AccessToken(ctx context.Context, opt ...Option) AccessTokenResult {
	const op = "nativeauth.(AccountInfo).AccessToken"
	c := i.controller
	opts := getAccessTokenOpts(opt...)

	correlationId, err := NewCorrelationId()
	if err != nil {
		return failedResult[*AuthenticationResult, struct{}](c.fail(op, i.correlationId, err))
	}
	logger := c.logger.With("op", op, "correlation_id", correlationId)

	requested := strutils.RemoveDuplicatesStable(opts.withScopes, false)
	if opts.withScopesSet && len(requested) == 0 {
		return failedResult[*AuthenticationResult, struct{}](newError(KindInvalidScopes, op, correlationId, "scopes are empty"))
	}

	cached, err := c.cache.Lookup(ctx, i.account.HomeAccountId)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return failedResult[*AuthenticationResult, struct{}](newError(KindNoCachedAccount, op, correlationId, "account is not cached"))
		}
		return failedResult[*AuthenticationResult, struct{}](c.fail(op, correlationId, err))
	}
	if len(requested) == 0 {
		requested = cached.Scopes
	}
	if len(requested) == 0 {
		requested = c.config.scopes(nil)
	}

	if !opts.withForceRefresh && cached.tokenValid() && cached.covers(requested) {
		logger.Debug("returning cached access token")
		return completedResult[*AuthenticationResult, struct{}](cachedAuthenticationResult(correlationId, cached))
	}
	if cached.Token == nil || cached.Token.RefreshToken == "" {
		return failedResult[*AuthenticationResult, struct{}](newError(KindNoCachedAccount, op, correlationId, "no refresh token is cached"))
	}

	p, err := newRefreshParams(op, c.config, correlationId, RefreshToken(cached.Token.RefreshToken), i.account.Username, requested)
	if err != nil {
		return failedResult[*AuthenticationResult, struct{}](c.fail(op, correlationId, err))
	}
	auth, err := c.signIn.refresh(ctx, p)
	if err != nil {
		return failedResult[*AuthenticationResult, struct{}](c.fail(op, correlationId, err))
	}
	if auth.IdToken == "" {
		auth.Account = cached.Account
		auth.IdToken = cached.IdToken
	}
	if err := c.storeAccount(ctx, auth); err != nil {
		return failedResult[*AuthenticationResult, struct{}](c.fail(op, correlationId, err))
	}
	logger.Debug("refreshed access token")
	return completedResult[*AuthenticationResult, struct{}](auth)
}

// SignOut removes the account from the cache.  Tokens aren't revoked.
func (i *AccountInfo) SignOut(ctx context.Context) SignOutResult {
	const op = "nativeauth.(AccountInfo).SignOut"
	c := i.controller
	if err := c.cache.Remove(ctx, i.account.HomeAccountId); err != nil {
		return failedResult[struct{}, struct{}](c.fail(op, i.correlationId, err))
	}
	c.logger.Debug("signed out", "op", op, "correlation_id", i.correlationId)
	return completedResult[struct{}, struct{}](struct{}{})
}

func cachedAuthenticationResult(correlationId string, a *CachedAccount) *AuthenticationResult {
	return &AuthenticationResult{
		Account:       a.Account,
		IdToken:       a.IdToken,
		AccessToken:   AccessToken(a.Token.AccessToken),
		RefreshToken:  RefreshToken(a.Token.RefreshToken),
		TokenType:     a.Token.TokenType,
		Scopes:        slices.Clone(a.Scopes),
		ExpiresOn:     a.Token.Expiry,
		CorrelationId: correlationId,
	}
}
