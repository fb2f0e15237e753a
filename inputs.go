// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

// SignInInputs are the caller's parameters for a sign-in.
type SignInInputs struct {
	// CorrelationId is optional; one is generated when it's empty.
	CorrelationId string

	// Username is required.
	Username string

	// Password is optional.  When it's provided and the server asks for a
	// password, it's submitted right away.
	Password Password

	// Scopes are optional; the config's scopes are used when it's empty.
	Scopes []string
}

// SignUpInputs are the caller's parameters for a sign-up.
type SignUpInputs struct {
	// CorrelationId is optional; one is generated when it's empty.
	CorrelationId string

	// Username is required.
	Username string

	// Password is optional.
	Password Password

	// Attributes are optional.
	Attributes *UserAccountAttributes
}

// ResetPasswordInputs are the caller's parameters for a password reset.
type ResetPasswordInputs struct {
	// CorrelationId is optional; one is generated when it's empty.
	CorrelationId string

	// Username is required.
	Username string
}

// GetAccountInputs are the caller's parameters for GetCurrentAccount.
type GetAccountInputs struct {
	// CorrelationId is optional; one is generated when it's empty.
	CorrelationId string
}
