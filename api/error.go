// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidParameter is an invalid parameter error
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNilParameter is a nil parameter error
	ErrNilParameter = errors.New("nil parameter")

	// ErrInvalidCACert is returned when a provider CA PEM can't be parsed
	ErrInvalidCACert = errors.New("invalid CA certificate")

	// ErrUnexpectedResponse is returned when a response body can't be
	// decoded into the expected shape.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// ErrorResponse is the error body returned by every native authentication
// endpoint. It implements error so it can be returned directly from the
// Client's methods.
type ErrorResponse struct {
	// StatusCode is the HTTP status code of the response. It's not part of
	// the JSON body.
	StatusCode int `json:"-"`

	Code               string             `json:"error"`
	Description        string             `json:"error_description,omitempty"`
	ErrorCodes         []int              `json:"error_codes,omitempty"`
	SubError           string             `json:"suberror,omitempty"`
	CorrelationId      string             `json:"correlation_id,omitempty"`
	TraceId            string             `json:"trace_id,omitempty"`
	Timestamp          string             `json:"timestamp,omitempty"`
	ContinuationToken  string             `json:"continuation_token,omitempty"`
	RequiredAttributes []UserAttribute    `json:"required_attributes,omitempty"`
	InvalidAttributes  []InvalidAttribute `json:"invalid_attributes,omitempty"`
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Code)
	if e.SubError != "" {
		fmt.Fprintf(&b, " (%s)", e.SubError)
	}
	if e.Description != "" {
		fmt.Fprintf(&b, ": %s", e.Description)
	}
	return b.String()
}

// InvalidAttributeNames returns the names of the attributes the server
// rejected.
func (e *ErrorResponse) InvalidAttributeNames() []string {
	if e == nil || len(e.InvalidAttributes) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.InvalidAttributes))
	for _, a := range e.InvalidAttributes {
		names = append(names, a.Name)
	}
	return names
}

// UserAttribute describes an attribute the server requires before a sign-up
// can continue.
type UserAttribute struct {
	Name     string                `json:"name,omitempty"`
	Type     string                `json:"type,omitempty"`
	Required bool                  `json:"required,omitempty"`
	Options  *UserAttributeOptions `json:"options,omitempty"`
}

// UserAttributeOptions are the validation options for a UserAttribute.
type UserAttributeOptions struct {
	Regex string `json:"regex,omitempty"`
}

// InvalidAttribute names an attribute that failed server side validation.
type InvalidAttribute struct {
	Name string `json:"name"`
}
