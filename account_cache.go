// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/cap/nativeauth/internal/strutils"
	"golang.org/x/oauth2"
)

// ErrAccountNotFound is returned by an AccountCache when there's no account
// for the request.
var ErrAccountNotFound = errors.New("account not found")

// CachedAccount is what an AccountCache stores for a signed in account.
type CachedAccount struct {
	Account Account
	IdToken IdToken

	// Token holds the access and refresh tokens.
	Token *oauth2.Token

	// Scopes are the scopes the access token was issued for.
	Scopes []string

	LastUpdated time.Time
}

func (a *CachedAccount) clone() *CachedAccount {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Token != nil {
		tk := *a.Token
		cp.Token = &tk
	}
	cp.Scopes = slices.Clone(a.Scopes)
	return &cp
}

// tokenValid reports whether the cached access token can still be used.  A
// token without an expiry is treated as expired.
func (a *CachedAccount) tokenValid() bool {
	return a.Token.Valid() && !a.Token.Expiry.IsZero()
}

// covers reports whether the cached access token was issued for every one
// of the scopes.
func (a *CachedAccount) covers(scopes []string) bool {
	return strutils.StrListContainsAll(a.Scopes, scopes)
}

// AccountCache stores the accounts of completed sign-ins.  Implementations
// must be safe for concurrent use.
type AccountCache interface {
	// Store adds or replaces the account with the same HomeAccountId and
	// makes it the current account.
	Store(ctx context.Context, a *CachedAccount) error

	// Lookup returns the account or ErrAccountNotFound.
	Lookup(ctx context.Context, homeAccountId string) (*CachedAccount, error)

	// Current returns the most recently stored account or
	// ErrAccountNotFound.
	Current(ctx context.Context) (*CachedAccount, error)

	// Remove deletes the account.  Removing an unknown account isn't an
	// error.
	Remove(ctx context.Context, homeAccountId string) error
}

// MemoryAccountCache is an in-memory AccountCache.
type MemoryAccountCache struct {
	mu       sync.RWMutex
	accounts map[string]*CachedAccount
}

var _ AccountCache = (*MemoryAccountCache)(nil)

// NewMemoryAccountCache creates an empty MemoryAccountCache.
func NewMemoryAccountCache() *MemoryAccountCache {
	return &MemoryAccountCache{accounts: map[string]*CachedAccount{}}
}

// Store implements AccountCache.  LastUpdated is set when it's zero.
func (c *MemoryAccountCache) Store(_ context.Context, a *CachedAccount) error {
	const op = "nativeauth.(MemoryAccountCache).Store"
	switch {
	case a == nil:
		return fmt.Errorf("%s: account is nil: %w", op, ErrNilParameter)
	case a.Account.HomeAccountId == "":
		return fmt.Errorf("%s: home account id is empty: %w", op, ErrInvalidParameter)
	}
	cp := a.clone()
	if cp.LastUpdated.IsZero() {
		cp.LastUpdated = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[cp.Account.HomeAccountId] = cp
	return nil
}

// Lookup implements AccountCache.
func (c *MemoryAccountCache) Lookup(_ context.Context, homeAccountId string) (*CachedAccount, error) {
	const op = "nativeauth.(MemoryAccountCache).Lookup"
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.accounts[homeAccountId]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return a.clone(), nil
}

// Current implements AccountCache.
func (c *MemoryAccountCache) Current(_ context.Context) (*CachedAccount, error) {
	const op = "nativeauth.(MemoryAccountCache).Current"
	c.mu.RLock()
	defer c.mu.RUnlock()
	var current *CachedAccount
	for _, a := range c.accounts {
		if current == nil || a.LastUpdated.After(current.LastUpdated) {
			current = a
		}
	}
	if current == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return current.clone(), nil
}

// Remove implements AccountCache.
func (c *MemoryAccountCache) Remove(_ context.Context, homeAccountId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.accounts, homeAccountId)
	return nil
}
