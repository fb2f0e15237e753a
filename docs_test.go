// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/cap/nativeauth"
)

func Example_signIn() {
	ctx := context.Background()

	// Create a new Config
	cfg, err := nativeauth.NewConfig(
		"https://contoso.ciamlogin.com/contoso.onmicrosoft.com",
		"your_client_id",
		nativeauth.WithChallengeTypes(nativeauth.ChallengeTypeOOB, nativeauth.ChallengeTypePassword),
	)
	if err != nil {
		// handle error
	}

	// Create an application
	app, err := nativeauth.NewPublicClientApplication(cfg)
	if err != nil {
		// handle error
	}

	// Start a sign-in.  The password is submitted right away if the server
	// asks for one.
	result := app.SignIn(ctx, nativeauth.SignInInputs{
		Username: "alice@contoso.com",
		Password: nativeauth.Password("the user's password"),
	})
	for result.HasNext() {
		next, _ := result.Next()
		switch h := next.(type) {
		case *nativeauth.SignInCodeRequiredHandler:
			fmt.Printf("enter the %d digit code sent to %s\n", h.CodeLength(), h.TargetLabel())
			var code string
			result = h.SubmitCode(ctx, code)
		case *nativeauth.SignInPasswordRequiredHandler:
			var password nativeauth.Password
			result = h.SubmitPassword(ctx, password)
		}
	}
	if result.IsFailed() {
		if errors.Is(result.Err(), nativeauth.ErrRedirect) {
			// fall back to a browser based flow
		}
		// handle error
		return
	}
	account, _ := result.Data()

	// Get an access token, refreshing it when needed
	tk := account.AccessToken(ctx, nativeauth.WithScopes("api://contoso/read"))
	if tk.IsFailed() {
		// handle error
	}
	auth, _ := tk.Data()
	fmt.Println("token source:", auth.TokenSource())
}

func Example_signUp() {
	ctx := context.Background()

	cfg, err := nativeauth.NewConfig("https://contoso.ciamlogin.com/contoso.onmicrosoft.com", "your_client_id")
	if err != nil {
		// handle error
	}
	app, err := nativeauth.NewPublicClientApplication(cfg)
	if err != nil {
		// handle error
	}

	attributes := nativeauth.NewUserAccountAttributes()
	attributes.SetDisplayName("Alice")

	result := app.SignUp(ctx, nativeauth.SignUpInputs{
		Username:   "alice@contoso.com",
		Password:   nativeauth.Password("a strong password"),
		Attributes: attributes,
	})
	for result.HasNext() {
		next, _ := result.Next()
		switch h := next.(type) {
		case *nativeauth.SignUpCodeRequiredHandler:
			var code string
			result = h.SubmitCode(ctx, code)
		case *nativeauth.SignUpPasswordRequiredHandler:
			var password nativeauth.Password
			result = h.SubmitPassword(ctx, password)
		case *nativeauth.SignUpAttributesRequiredHandler:
			more := nativeauth.NewUserAccountAttributes()
			for _, a := range h.RequiredAttributes() {
				_ = more.SetCustomAttribute(a.Name, "value")
			}
			result = h.SubmitAttributes(ctx, more)
		}
	}
	if result.IsFailed() {
		// handle error
		return
	}

	// The new user can be signed in without entering their credentials again
	signIn, _ := result.Data()
	account := signIn.SignIn(ctx)
	if account.IsFailed() {
		// handle error
	}
}
