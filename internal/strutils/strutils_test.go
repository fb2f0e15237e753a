// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package strutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrListContains(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	haystack := []string{
		"password",
		"oob",
		"redirect",
	}
	require.False(StrListContains(haystack, "otp"))
	require.True(StrListContains(haystack, "redirect"))
	require.False(StrListContains(nil, "oob"))
}

func TestStrListContainsAll(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	scopes := []string{"openid", "profile", "offline_access"}
	assert.True(StrListContainsAll(scopes, nil))
	assert.True(StrListContainsAll(scopes, []string{"profile", "openid"}))
	assert.False(StrListContainsAll(scopes, []string{"openid", "api://contoso/read"}))
	assert.False(StrListContainsAll(nil, []string{"openid"}))
}

func TestRemoveDuplicatesStable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name            string
		input           []string
		want            []string
		caseInsensitive bool
	}{
		{"empty", []string{}, []string{}, false},
		{"empty-insensitive", []string{}, []string{}, true},
		{"dup", []string{"oob", "password", "oob"}, []string{"oob", "password"}, false},
		{"case-sensitive", []string{"OOB", "password", "oob"}, []string{"OOB", "password", "oob"}, false},
		{"case-insensitive", []string{"OOB", "password", "oob"}, []string{"OOB", "password"}, true},
		{"blank", []string{" ", "redirect", "oob", "redirect"}, []string{"redirect", "oob"}, false},
		{"trimmed", []string{"Oob ", " oob", " oob ", "password"}, []string{"Oob", "password"}, true},
		{"trimmed-sensitive", []string{"Oob ", " oob", " oob ", "password"}, []string{"Oob", "oob", "password"}, false},
		{"scopes", []string{" openid", "profile ", "openid"}, []string{"openid", "profile"}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert := assert.New(t)
			assert.Equal(tt.want, RemoveDuplicatesStable(tt.input, tt.caseInsensitive))
		})
	}
}
