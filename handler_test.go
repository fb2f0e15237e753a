// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowContext_validate(t *testing.T) {
	t.Parallel()
	c := &StandardController{config: &Config{}, logger: hclog.NewNullLogger()}
	valid := flowContext{controller: c, correlationId: "corr", continuationToken: "ct", username: "alice"}
	tests := []struct {
		name    string
		f       func() flowContext
		wantErr bool
	}{
		{"valid", func() flowContext { return valid }, false},
		{"nil-controller", func() flowContext { f := valid; f.controller = nil; return f }, true},
		{"nil-config", func() flowContext { f := valid; f.controller = &StandardController{}; return f }, true},
		{"missing-correlation-id", func() flowContext { f := valid; f.correlationId = ""; return f }, true},
		{"missing-continuation-token", func() flowContext { return valid.next("") }, true},
		{"missing-username", func() flowContext { f := valid; f.username = ""; return f }, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.f().validate("test")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHandlerConstructors(t *testing.T) {
	t.Parallel()
	c := &StandardController{config: &Config{}, logger: hclog.NewNullLogger()}
	f := flowContext{controller: c, correlationId: "corr", username: "alice"}
	a := &actionResult{challengeChannel: "email", challengeTargetLabel: "a***@example.com", codeLength: 8, interval: 300}

	assert := assert.New(t)
	var err error
	_, err = newSignInCodeRequiredHandler("test", f, a)
	assert.ErrorIs(err, ErrInvalidArgument)
	_, err = newSignInPasswordRequiredHandler("test", f)
	assert.ErrorIs(err, ErrInvalidArgument)
	_, err = newSignInContinuationHandler("test", f)
	assert.ErrorIs(err, ErrInvalidArgument)
	_, err = newSignUpCodeRequiredHandler("test", f, a)
	assert.ErrorIs(err, ErrInvalidArgument)
	_, err = newSignUpPasswordRequiredHandler("test", f)
	assert.ErrorIs(err, ErrInvalidArgument)
	_, err = newSignUpAttributesRequiredHandler("test", f, a)
	assert.ErrorIs(err, ErrInvalidArgument)
	_, err = newResetPasswordCodeRequiredHandler("test", f, a)
	assert.ErrorIs(err, ErrInvalidArgument)
	_, err = newResetPasswordPasswordRequiredHandler("test", f)
	assert.ErrorIs(err, ErrInvalidArgument)

	h, err := newSignInCodeRequiredHandler("test", f.next("ct"), a)
	require.NoError(t, err)
	assert.Equal("ct", h.ContinuationToken())
	assert.Equal("corr", h.CorrelationId())
	assert.Equal("email", h.Channel())
	assert.Equal("a***@example.com", h.TargetLabel())
	assert.Equal(8, h.CodeLength())
	assert.Equal(300, h.Interval())
}

func TestHandlerBase_state(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	c := &StandardController{config: &Config{}, logger: hclog.NewNullLogger()}
	h := &handlerBase{flow: flowContext{controller: c, correlationId: "corr"}}

	require.Nil(t, h.begin("test"))
	busy := h.begin("test")
	require.NotNil(t, busy)
	assert.Equal(KindInvalidState, busy.Kind)

	h.end(false)
	assert.False(h.Consumed())
	require.Nil(t, h.begin("test"))
	h.end(true)
	assert.True(h.Consumed())
	assert.Equal(KindInvalidState, h.begin("test").Kind)

	// only one of many concurrent callers gets the handler
	h = &handlerBase{flow: flowContext{controller: c, correlationId: "corr"}}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.begin("test") == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(1, wins)
}

func TestHandlers_sameBoundContext(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	c := &StandardController{config: &Config{}, logger: hclog.NewNullLogger()}
	f := flowContext{controller: c, correlationId: "corr", username: "alice"}.next("ct")
	a := &actionResult{challengeChannel: "email", challengeTargetLabel: "a***@example.com", codeLength: 8, interval: 300}

	h1, err := newSignInCodeRequiredHandler("test", f, a)
	require.NoError(err)
	h2, err := newSignInCodeRequiredHandler("test", f, a)
	require.NoError(err)

	assert.Equal(h1.Step(), h2.Step())
	assert.Equal(h1.ContinuationToken(), h2.ContinuationToken())
	assert.Equal(h1.CorrelationId(), h2.CorrelationId())
	assert.Equal(h1.codeDetails, h2.codeDetails)
	assert.Equal(h1.flow.username, h2.flow.username)

	// advancing one leaves the other untouched
	require.Nil(h1.begin("test"))
	h1.end(true)
	assert.True(h1.Consumed())
	assert.False(h2.Consumed())
	assert.Nil(h2.begin("test"))
}
