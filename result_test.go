// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	t.Parallel()
	t.Run("failed", func(t *testing.T) {
		assert := assert.New(t)
		err := newError(KindRedirect, "op", "corr", "")
		r := failedResult[string, int](err)
		assert.Equal(ResultFailed, r.Kind())
		assert.True(r.IsFailed())
		assert.False(r.IsCompleted())
		assert.False(r.HasNext())
		assert.Equal(err, r.Err())
		_, ok := r.Data()
		assert.False(ok)
		_, ok = r.Next()
		assert.False(ok)
	})
	t.Run("completed", func(t *testing.T) {
		assert := assert.New(t)
		r := completedResult[string, int]("data")
		assert.Equal(ResultCompleted, r.Kind())
		assert.True(r.IsCompleted())
		assert.Nil(r.Err())
		d, ok := r.Data()
		assert.True(ok)
		assert.Equal("data", d)
		_, ok = r.Next()
		assert.False(ok)
	})
	t.Run("next-step", func(t *testing.T) {
		assert := assert.New(t)
		r := nextStepResult[string](42)
		assert.Equal(ResultNextStep, r.Kind())
		assert.True(r.HasNext())
		assert.Nil(r.Err())
		_, ok := r.Data()
		assert.False(ok)
		n, ok := r.Next()
		assert.True(ok)
		assert.Equal(42, n)
	})
	t.Run("zero", func(t *testing.T) {
		assert := assert.New(t)
		var r SignInResult
		assert.Equal(ResultInvalid, r.Kind())
		assert.Equal("invalid", r.Kind().String())
		assert.False(r.IsFailed() || r.IsCompleted() || r.HasNext())
	})
	t.Run("kind-names", func(t *testing.T) {
		assert := assert.New(t)
		assert.Equal("failed", ResultFailed.String())
		assert.Equal("completed", ResultCompleted.String())
		assert.Equal("next_step", ResultNextStep.String())
		assert.Equal("code_required", StepCodeRequired.String())
		assert.Equal("password_required", StepPasswordRequired.String())
		assert.Equal("attributes_required", StepAttributesRequired.String())
		assert.Equal("sign_in_continuation", StepSignInContinuation.String())
		assert.Equal("unknown", StepUnknown.String())
	})
}
