// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// ErrIdGeneratorFailed is returned when a correlation id can't be generated.
var ErrIdGeneratorFailed = errors.New("id generation failed")

// NewCorrelationId generates a correlation id: a random UUID sent with every
// request of one flow instance.
func NewCorrelationId() (string, error) {
	const op = "nativeauth.NewCorrelationId"
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", op, ErrIdGeneratorFailed, err)
	}
	return id, nil
}

// resolveCorrelationId returns the caller's correlation id, or a new one
// when it's empty.
func resolveCorrelationId(correlationId string) (string, error) {
	if correlationId != "" {
		return correlationId, nil
	}
	return NewCorrelationId()
}
