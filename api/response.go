// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

// ChallengeKind discriminates the two shapes of a challenge response.
type ChallengeKind int

const (
	// ChallengeKindUnknown is the zero value and is never produced by the
	// Client.
	ChallengeKindUnknown ChallengeKind = iota

	// ChallengeKindContinuationToken means the server only returned a
	// continuation token and expects a credential (a password) next.
	ChallengeKindContinuationToken

	// ChallengeKindCodeSent means the server sent a one-time code to the
	// user and returned the channel details.
	ChallengeKindCodeSent
)

// String returns a name for the kind.
func (k ChallengeKind) String() string {
	switch k {
	case ChallengeKindContinuationToken:
		return "continuation_token"
	case ChallengeKindCodeSent:
		return "code_sent"
	default:
		return "unknown"
	}
}

// ContinuationTokenResponse is returned by the initiate and start endpoints
// and by the continue endpoints on success.
type ContinuationTokenResponse struct {
	ContinuationToken string `json:"continuation_token,omitempty"`
	ChallengeType     string `json:"challenge_type,omitempty"`
	ExpiresIn         int    `json:"expires_in,omitempty"`
}

// ChallengeResponse is returned by every challenge endpoint. Kind is set by
// the Client after decoding and is the only field callers should branch on.
type ChallengeResponse struct {
	Kind ChallengeKind `json:"-"`

	ContinuationToken    string `json:"continuation_token,omitempty"`
	ChallengeType        string `json:"challenge_type,omitempty"`
	BindingMethod        string `json:"binding_method,omitempty"`
	ChallengeChannel     string `json:"challenge_channel,omitempty"`
	ChallengeTargetLabel string `json:"challenge_target_label,omitempty"`
	CodeLength           int    `json:"code_length,omitempty"`
	Interval             int    `json:"interval,omitempty"`
}

// setKind derives the Kind from the fields the server populated.
func (r *ChallengeResponse) setKind() {
	switch {
	case r.BindingMethod != "", r.ChallengeChannel != "", r.CodeLength > 0:
		r.Kind = ChallengeKindCodeSent
	default:
		r.Kind = ChallengeKindContinuationToken
	}
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	ExtExpiresIn int    `json:"ext_expires_in,omitempty"`
	IdToken      string `json:"id_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ResetPasswordSubmitResponse is returned by resetpassword/v1.0/submit.
type ResetPasswordSubmitResponse struct {
	ContinuationToken string `json:"continuation_token,omitempty"`

	// PollInterval is in seconds.
	PollInterval int `json:"poll_interval,omitempty"`
}

// Poll completion statuses.
const (
	PollStatusNotStarted = "not_started"
	PollStatusInProgress = "in_progress"
	PollStatusSucceeded  = "succeeded"
	PollStatusFailed     = "failed"
)

// PollCompletionResponse is returned by resetpassword/v1.0/poll_completion.
type PollCompletionResponse struct {
	Status            string `json:"status,omitempty"`
	ContinuationToken string `json:"continuation_token,omitempty"`
	ExpiresIn         int    `json:"expires_in,omitempty"`
}
