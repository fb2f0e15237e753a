// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"time"

	"github.com/hashicorp/cap/nativeauth/api"
)

// ChallengeType is a challenge the server can ask the user to satisfy.
type ChallengeType string

const (
	ChallengeTypePassword ChallengeType = api.ChallengeTypePassword
	ChallengeTypeOOB      ChallengeType = api.ChallengeTypeOOB

	// ChallengeTypeRedirect is always sent to the server.  When the server
	// answers with it, the flow can't continue natively and the application
	// must fall back to a browser based flow.
	ChallengeTypeRedirect ChallengeType = api.ChallengeTypeRedirect
)

// GrantType is the kind of proof submitted to the token and continue
// endpoints.
type GrantType string

const (
	GrantTypePassword          GrantType = api.GrantTypePassword
	GrantTypeOOB               GrantType = api.GrantTypeOOB
	GrantTypeContinuationToken GrantType = api.GrantTypeContinuationToken
	GrantTypeAttributes        GrantType = api.GrantTypeAttributes
	GrantTypeRefreshToken      GrantType = api.GrantTypeRefreshToken
)

var (
	// DefaultChallengeTypes are used when the config doesn't provide any.
	DefaultChallengeTypes = []ChallengeType{ChallengeTypeOOB, ChallengeTypePassword}

	// DefaultScopes are requested when neither the config nor the inputs
	// provide any.
	DefaultScopes = []string{"openid", "profile", "offline_access"}
)

const (
	// DefaultPollInterval is used when the server doesn't provide a
	// poll_interval.
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxPollAttempts bounds the polling of a reset password flow.
	DefaultMaxPollAttempts = 10
)
