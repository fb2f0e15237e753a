// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"github.com/hashicorp/cap/nativeauth/api"
)

// actionKind discriminates the outcomes of an interaction client call.
type actionKind int

const (
	actionUnknown actionKind = iota
	actionCodeRequired
	actionPasswordRequired
	actionAttributesRequired
	actionContinuation
	actionCompleted
)

// actionResult is the outcome of an interaction client call.  Which fields
// are set depends on the kind.
type actionResult struct {
	kind              actionKind
	correlationId     string
	continuationToken string

	// set for actionCodeRequired
	challengeType        ChallengeType
	challengeChannel     string
	challengeTargetLabel string
	codeLength           int
	interval             int

	// set for actionAttributesRequired
	requiredAttributes []RequiredAttribute

	// set for actionCompleted
	auth *AuthenticationResult
}

// checkRedirect fails with KindRedirect when the server answered with the
// redirect challenge type.
func checkRedirect(op, correlationId, challengeType string) error {
	if challengeType == api.ChallengeTypeRedirect {
		return newError(KindRedirect, op, correlationId, "native authentication is not supported, a browser based flow is required")
	}
	return nil
}

// startOutcome checks the response of an initiate or start call and returns
// its continuation token.
func startOutcome(op, correlationId string, resp *api.ContinuationTokenResponse) (string, error) {
	if resp == nil {
		return "", newError(KindUnknownApi, op, correlationId, "start response is nil")
	}
	if err := checkRedirect(op, correlationId, resp.ChallengeType); err != nil {
		return "", err
	}
	if resp.ContinuationToken == "" {
		return "", newError(KindUnknownApi, op, correlationId, "continuation token is missing")
	}
	return resp.ContinuationToken, nil
}

// challengeOutcome interprets a challenge response.  The response kind must
// agree with the challenge type: a continuation token response for
// password, a code sent response for oob.
func challengeOutcome(op, correlationId string, resp *api.ChallengeResponse) (*actionResult, error) {
	if resp == nil {
		return nil, newError(KindUnknownApi, op, correlationId, "challenge response is nil")
	}
	if err := checkRedirect(op, correlationId, resp.ChallengeType); err != nil {
		return nil, err
	}
	if resp.ContinuationToken == "" {
		return nil, newError(KindUnknownApi, op, correlationId, "continuation token is missing")
	}
	switch {
	case resp.Kind == api.ChallengeKindContinuationToken && resp.ChallengeType == api.ChallengeTypePassword:
		return &actionResult{
			kind:              actionPasswordRequired,
			correlationId:     correlationId,
			continuationToken: resp.ContinuationToken,
			challengeType:     ChallengeTypePassword,
		}, nil
	case resp.Kind == api.ChallengeKindCodeSent && resp.ChallengeType == api.ChallengeTypeOOB:
		return &actionResult{
			kind:                 actionCodeRequired,
			correlationId:        correlationId,
			continuationToken:    resp.ContinuationToken,
			challengeType:        ChallengeTypeOOB,
			challengeChannel:     resp.ChallengeChannel,
			challengeTargetLabel: resp.ChallengeTargetLabel,
			codeLength:           resp.CodeLength,
			interval:             resp.Interval,
		}, nil
	default:
		return nil, newError(KindUnknownApi, op, correlationId, "challenge response "+resp.Kind.String()+" doesn't match challenge type "+resp.ChallengeType)
	}
}
