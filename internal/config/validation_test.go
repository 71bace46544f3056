// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{Field: "api.endpoint", Message: "must be a valid URL"}
	assert.Contains(t, err.Error(), "api.endpoint")
	assert.Contains(t, err.Error(), "must be a valid URL")
}

func TestValidateErrorsAggregates(t *testing.T) {
	cfg := Default()
	cfg.API.TimeoutSecs = 0
	cfg.API.Temperature = 9
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	require.Error(t, err)

	verrs, ok := err.(ValidateErrors)
	require.True(t, ok, "expected ValidateErrors, got %T", err)
	assert.Len(t, verrs, 3)
	assert.Contains(t, err.Error(), "timeout_secs")
	assert.Contains(t, err.Error(), "temperature")
	assert.Contains(t, err.Error(), "theme")
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	require.NotNil(t, clone)

	clone.API.Endpoint = "http://elsewhere:9000/generate"
	clone.UI.Theme = "light"

	assert.NotEqual(t, cfg.API.Endpoint, clone.API.Endpoint)
	assert.Equal(t, "dark", cfg.UI.Theme, "clone mutation must not leak back")
}

func TestStringRedactsNothingButStaysValid(t *testing.T) {
	cfg := Default()
	s := cfg.String()
	require.NotEmpty(t, s)
	assert.Contains(t, s, cfg.API.Endpoint)
}
