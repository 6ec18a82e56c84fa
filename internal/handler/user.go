// Package handler implements the HTTP layer: request decoding,
// declarative validation, response encoding, and cookie handling.
// Business decisions live in the service layer; handlers translate
// between HTTP and the service's inputs/outputs and nothing more.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/authd/internal/apperror"
	"github.com/sakif/authd/internal/auth"
	"github.com/sakif/authd/internal/otp"
	"github.com/sakif/authd/internal/service"
	"github.com/sakif/authd/internal/validate"
)

// sessionCookieName is the cookie carrying the JWT between browser
// requests.
const sessionCookieName = "token"

// UserHandler owns the /user/* routes.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// ---------------------------------------------------------------------
// Request schemas — declared once, applied before any handler logic.
// Validation failures short-circuit with 422 and a field → message map;
// the service never sees an invalid payload.
// ---------------------------------------------------------------------

var signUpSchema = validate.Schema{
	{Name: "name", Rules: []validate.Rule{validate.Required("name"), validate.MinLen("name", 2)}},
	{Name: "email", Rules: []validate.Rule{validate.Required("email"), validate.Email("email")}},
	{Name: "phone", Rules: []validate.Rule{validate.Required("phone"), validate.MinLen("phone", 10)}},
	{Name: "password", Rules: []validate.Rule{validate.Required("password"), validate.Password("password")}},
	{Name: "otp", Rules: []validate.Rule{validate.Required("otp"), validate.Digits("otp", otp.CodeLength)}},
}

var signInSchema = validate.Schema{
	{Name: "email", Rules: []validate.Rule{validate.Required("email"), validate.Email("email")}},
	{Name: "password", Rules: []validate.Rule{validate.Required("password")}},
}

var sendCodeSchema = validate.Schema{
	{Name: "email", Rules: []validate.Rule{validate.Required("email"), validate.Email("email")}},
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sendCodeRequest struct {
	Email string `json:"email"`
}

// HandleSignUp registers a new user.
//
// HTTP: POST /user/sign-up
// Body: {name, email, phone, password, otp}
//
// On success the session token is set as an HttpOnly cookie AND the
// created user is returned in the body (without the password hash —
// model.User tags it out of JSON).
func (h *UserHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid sign-up JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed(map[string]string{"body": "invalid JSON body"}))
		return
	}

	// Normalize before validating so " A@B.com " and "a@b.com" are the
	// same account.
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if errs := validate.Apply(signUpSchema, map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"phone":    req.Phone,
		"password": req.Password,
		"otp":      req.OTP,
	}); errs != nil {
		writeError(w, apperror.ValidationFailed(errs))
		return
	}

	result, err := h.users.SignUp(r.Context(), service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, envelope{
		Message: "Sign-up successful",
		Data:    result.User,
	})
}

// HandleSignIn authenticates an existing user.
//
// HTTP: POST /user/sign-in
// Body: {email, password}
//
// Credential failures return 422 with one generic message for both the
// unknown-email and wrong-password cases.
func (h *UserHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid sign-in JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed(map[string]string{"body": "invalid JSON body"}))
		return
	}

	req.Email = normalizeEmail(req.Email)

	if errs := validate.Apply(signInSchema, map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}); errs != nil {
		writeError(w, apperror.ValidationFailed(errs))
		return
	}

	result, err := h.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, envelope{
		Message: "Sign-in successful",
		Data:    result.User,
	})
}

// HandleSendCode issues a verification code to an email address.
//
// HTTP: POST /user/send-email
// Body: {email}
//
// Responds success unconditionally once the code is stored and handed
// to the sender — no hint whether the email already has an account.
func (h *UserHandler) HandleSendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid send-email JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed(map[string]string{"body": "invalid JSON body"}))
		return
	}

	req.Email = normalizeEmail(req.Email)

	if errs := validate.Apply(sendCodeSchema, map[string]string{
		"email": req.Email,
	}); errs != nil {
		writeError(w, apperror.ValidationFailed(errs))
		return
	}

	if err := h.users.SendCode(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Message: "Verification code sent"})
}

// HandleDetail returns the authenticated user's profile.
//
// HTTP: GET /user/detail
// Auth: RequireAuth (Bearer header or token cookie)
//
// A token whose user has since been deleted yields 200 with an empty
// object, not an error — the token was valid, the row just isn't there.
func (h *UserHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't panic if mis-wired.
		writeError(w, apperror.Unauthorized("unauthorized"))
		return
	}

	user, err := h.users.Profile(r.Context(), id.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	var data any = user
	if user == nil {
		data = struct{}{} // renders as {}
	}
	writeJSON(w, http.StatusOK, envelope{
		Message: "OK",
		Data:    data,
	})
}

// setSessionCookie installs the JWT as an HttpOnly session cookie.
// SameSite=Lax: sent on top-level navigations, withheld on cross-site
// POSTs. Secure stays off for local development; enable behind HTTPS.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// normalizeEmail lowercases and trims. Email local parts are
// case-sensitive per RFC but no real mail system treats them that way,
// and a case-insensitive identity prevents duplicate accounts.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
