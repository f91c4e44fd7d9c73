// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/postdeck/internal/auth"
	"github.com/taibuivan/postdeck/internal/platform/constants"
	"github.com/taibuivan/postdeck/internal/platform/middleware"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	service, tokens := newService(t)
	require.NoError(t, service.SeedDemoUser(context.Background()))

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Mount("/api/auth", auth.NewHandler(service).Routes())
	return router
}

func serve(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_LoginAndMe walks the login then /me flow through the router.
*/
func TestHandler_LoginAndMe(t *testing.T) {
	router := newRouter(t)

	rec := serve(router, http.MethodPost, "/api/auth/login", `{"email":"demo@example.com","password":"password"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Message string       `json:"message"`
		Token   string       `json:"token"`
		User    auth.Profile `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "Login successful", login.Message)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, constants.DemoEmail, login.User.Email)

	rec = serve(router, http.MethodGet, "/api/auth/me", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Demo","email":"demo@example.com"}`, rec.Body.String())
}

/*
TestHandler_Register returns 201 then 409 for the same email.
*/
func TestHandler_Register(t *testing.T) {
	router := newRouter(t)
	body := `{"name":"Ada","email":"ada@example.com","password":"longenough"}`

	rec := serve(router, http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t,
		`{"message":"User registered successfully","user":{"id":2,"name":"Ada","email":"ada@example.com"}}`,
		rec.Body.String())

	rec = serve(router, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"CONFLICT"`)
}

/*
TestHandler_Errors checks the error envelope for common failures.
*/
func TestHandler_Errors(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		status int
		code   string
	}{
		{"bad_json", http.MethodPost, "/api/auth/login", `{`, "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad_credentials", http.MethodPost, "/api/auth/login", `{"email":"demo@example.com","password":"x"}`, "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"me_without_token", http.MethodGet, "/api/auth/me", "", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"me_bad_token", http.MethodGet, "/api/auth/me", "", "garbage", http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.status, rec.Code)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, tt.code, envelope["code"])
			assert.NotEmpty(t, envelope["message"])
		})
	}
}
