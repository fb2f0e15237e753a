// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package api is the wire layer of the native authentication endpoints: the
form encoded requests, the JSON responses and an HTTPClient that sends them.

It knows nothing about flows.  A server error is returned as an
*ErrorResponse (use errors.As) and it's up to the caller to decide what it
means for the flow in progress.

TestProvider is a local TLS server implementing every endpoint, used to write
tests without a real identity provider.
*/
package api
