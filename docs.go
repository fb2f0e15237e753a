// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// Package nativeauth lets a public client sign users in, sign them up and
// reset their passwords through an identity provider's native authentication
// API, without a browser redirect.
//
// Every flow is a sequence of steps.  Each step returns a Result that either
// failed (Err), completed (Data) or continues (Next) with a handler for the
// next step.  A handler only exposes the operations that are legal for its
// step and is bound to the continuation token the server issued for it:
//
//	cfg, err := nativeauth.NewConfig(authority, clientId)
//	app, err := nativeauth.NewPublicClientApplication(cfg)
//	result := app.SignIn(ctx, nativeauth.SignInInputs{Username: "alice@contoso.com"})
//	switch result.Kind() {
//	case nativeauth.ResultNextStep:
//		next, _ := result.Next()
//		h := next.(*nativeauth.SignInCodeRequiredHandler)
//		result = h.SubmitCode(ctx, code)
//	case nativeauth.ResultFailed:
//		if errors.Is(result.Err(), nativeauth.ErrRedirect) {
//			// fall back to a browser based flow
//		}
//	}
//
// The api package implements the wire protocol and contains a TestProvider
// which can be used to test applications.
package nativeauth
