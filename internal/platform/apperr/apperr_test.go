// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/postdeck/internal/platform/apperr"
)

/*
TestFromStatus maps response statuses onto the error taxonomy.
*/
func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusUnauthorized, apperr.CodeUnauthorized},
		{http.StatusForbidden, apperr.CodeForbidden},
		{http.StatusNotFound, apperr.CodeNotFound},
		{http.StatusConflict, apperr.CodeConflict},
		{http.StatusBadRequest, apperr.CodeValidation},
		{http.StatusTooManyRequests, apperr.CodeRateLimited},
		{http.StatusBadGateway, apperr.CodeInternal},
		{http.StatusTeapot, apperr.CodeRequestFailed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := apperr.FromStatus(tt.status, "boom")
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.status, err.HTTPStatus)
			assert.Equal(t, "boom", err.Error())
		})
	}
}

/*
TestCanceled_UnwrapsContextError keeps errors.Is working through the wrapper.
*/
func TestCanceled_UnwrapsContextError(t *testing.T) {
	err := fmt.Errorf("session: login: %w", apperr.Canceled(context.Canceled))

	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, apperr.HasCode(err, apperr.CodeCanceled))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Zero(t, ae.HTTPStatus)
}

/*
TestAs_NonAppError returns nil for plain errors.
*/
func TestAs_NonAppError(t *testing.T) {
	assert.Nil(t, apperr.As(errors.New("plain")))
	assert.False(t, apperr.IsAppError(errors.New("plain")))
	assert.False(t, apperr.HasCode(nil, apperr.CodeNetwork))
}
