// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/drivent/drivent/internal/auth"
	"github.com/drivent/drivent/pkg/errutil"
)

// Values of the method label on drivent_auth_attempts_total.
const (
	methodSignIn = "sign_in"
	methodGitHub = "github"
	methodSignUp = "sign_up"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type gitHubLogin struct {
	Code string `json:"code"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // client may disconnect
	w.Write([]byte("OK"))
}

// signIn handles POST /auth/sign-in.
func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(w, r, &body); err != nil {
		h.record(methodSignIn, err)
		h.unauthorized(w, r, methodSignIn, err)
		return
	}

	result, err := h.auth.SignIn(r.Context(), body.Email, body.Password)
	h.record(methodSignIn, err)
	if err != nil {
		h.unauthorized(w, r, methodSignIn, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// gitHub handles POST /auth/github.
func (h *handler) gitHub(w http.ResponseWriter, r *http.Request) {
	var body gitHubLogin
	if err := decode(w, r, &body); err != nil {
		h.record(methodGitHub, err)
		h.unauthorized(w, r, methodGitHub, err)
		return
	}
	if body.Code == "" {
		err := oops.Code(auth.CodeOAuthExchangeFailed).Errorf("code is required")
		h.record(methodGitHub, err)
		h.unauthorized(w, r, methodGitHub, err)
		return
	}

	result, err := h.auth.LoginWithGitHub(r.Context(), body.Code)
	h.record(methodGitHub, err)
	if err != nil {
		h.unauthorized(w, r, methodGitHub, err)
		return
	}
	if result.Provisioned && h.metrics != nil {
		h.metrics.UsersProvisioned.Inc()
	}
	writeJSON(w, http.StatusOK, result)
}

// signUp handles POST /users.
func (h *handler) signUp(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(w, r, &body); err != nil {
		errutil.Log(r.Context(), h.logger, slog.LevelWarn, "sign up rejected", err, "method", methodSignUp)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	user, err := h.auth.SignUp(r.Context(), body.Email, body.Password)
	h.record(methodSignUp, err)
	if err != nil {
		status := signUpStatus(err)
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		errutil.Log(r.Context(), h.logger, level, "sign up failed", err, "method", methodSignUp)
		writeJSON(w, status, errorBody{Error: errutil.Code(err)})
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func signUpStatus(err error) int {
	switch errutil.Code(err) {
	case auth.CodeEmailTaken:
		return http.StatusConflict
	case auth.CodeInvalidEmail, auth.CodeEmptyPassword, auth.CodePasswordTooLong:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// unauthorized logs the cause and answers 401 with an empty object.
func (h *handler) unauthorized(w http.ResponseWriter, r *http.Request, method string, err error) {
	errutil.Log(r.Context(), h.logger, slog.LevelWarn, "authentication failed", err, "method", method)
	writeJSON(w, http.StatusUnauthorized, struct{}{})
}

func (h *handler) record(method string, err error) {
	if h.metrics != nil {
		h.metrics.RecordAuthAttempt(method, err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return oops.Code("REQUEST_MALFORMED").With("operation", "decode body").Wrap(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	json.NewEncoder(w).Encode(v)
}
