// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"fmt"
	"maps"
)

// Built in user attribute names.
const (
	AttributeCity          = "city"
	AttributeCountry       = "country"
	AttributeDisplayName   = "displayName"
	AttributeGivenName     = "givenName"
	AttributeJobTitle      = "jobTitle"
	AttributePostalCode    = "postalCode"
	AttributeState         = "state"
	AttributeStreetAddress = "streetAddress"
	AttributeSurname       = "surname"
)

// UserAccountAttributes collects the user attributes sent with a sign-up.
// The zero value is ready to use.
type UserAccountAttributes struct {
	attributes map[string]string
}

// NewUserAccountAttributes creates an empty set of attributes.
func NewUserAccountAttributes() *UserAccountAttributes {
	return &UserAccountAttributes{}
}

// SetCustomAttribute sets an attribute by name.  The name can't be empty.
func (a *UserAccountAttributes) SetCustomAttribute(name, value string) error {
	const op = "nativeauth.(UserAccountAttributes).SetCustomAttribute"
	if name == "" {
		return fmt.Errorf("%s: attribute name is empty: %w", op, ErrInvalidParameter)
	}
	a.set(name, value)
	return nil
}

func (a *UserAccountAttributes) set(name, value string) {
	if a.attributes == nil {
		a.attributes = map[string]string{}
	}
	a.attributes[name] = value
}

func (a *UserAccountAttributes) SetCity(value string)          { a.set(AttributeCity, value) }
func (a *UserAccountAttributes) SetCountry(value string)       { a.set(AttributeCountry, value) }
func (a *UserAccountAttributes) SetDisplayName(value string)   { a.set(AttributeDisplayName, value) }
func (a *UserAccountAttributes) SetGivenName(value string)     { a.set(AttributeGivenName, value) }
func (a *UserAccountAttributes) SetJobTitle(value string)      { a.set(AttributeJobTitle, value) }
func (a *UserAccountAttributes) SetPostalCode(value string)    { a.set(AttributePostalCode, value) }
func (a *UserAccountAttributes) SetState(value string)         { a.set(AttributeState, value) }
func (a *UserAccountAttributes) SetStreetAddress(value string) { a.set(AttributeStreetAddress, value) }
func (a *UserAccountAttributes) SetSurname(value string)       { a.set(AttributeSurname, value) }

// ToMap returns a copy of the attributes.  It's nil safe.
func (a *UserAccountAttributes) ToMap() map[string]string {
	if a == nil || len(a.attributes) == 0 {
		return map[string]string{}
	}
	return maps.Clone(a.attributes)
}
