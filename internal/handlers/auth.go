// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/session"
	"quillpress/internal/store"
)

// totpIssuer appears in authenticator apps next to the account name.
const totpIssuer = "Quillpress"

// Auth groups authentication and account endpoints: registration, login,
// logout, the current-user view, TOTP two-factor setup, and the signed-in
// user's notification feed.
type Auth struct {
	sessions      *session.Store
	users         *store.UserStore
	notifications *store.NotificationStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore, notifications *store.NotificationStore) *Auth {
	return &Auth{
		sessions:      sessions,
		users:         users,
		notifications: notifications,
	}
}

// sessionView is the account payload returned by login, register and me.
type sessionView struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	TwoFARequired bool   `json:"two_fa_required"`
}

func viewFromSession(sess *session.Data) sessionView {
	return sessionView{
		ID:            sess.UserID.String(),
		Email:         sess.Email,
		Username:      sess.Username,
		DisplayName:   sess.DisplayName,
		Role:          sess.Role,
		TwoFARequired: !sess.TwoFADone,
	}
}

// Register serves POST /api/auth/register. New accounts get the reader
// role and are signed in immediately.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Username    string `json:"username"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateRegistration(req.Email, req.Username, req.Password, req.DisplayName); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	if existing, err := a.users.FindByEmail(email); err != nil {
		respondInternal(w, "registration lookup failed", err)
		return
	} else if existing != nil {
		respondError(w, http.StatusConflict, "an account with this email already exists")
		return
	}
	if existing, err := a.users.FindByUsername(username); err != nil {
		respondInternal(w, "registration lookup failed", err)
		return
	} else if existing != nil {
		respondError(w, http.StatusConflict, "this username is taken")
		return
	}

	user, err := a.users.Create(email, username, req.Password, displayName, models.RoleReader)
	if err != nil {
		respondInternal(w, "registration failed", err)
		return
	}

	data := &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   true, // readers have no 2FA requirement
	}
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		respondInternal(w, "session create failed", err)
		return
	}

	respondData(w, http.StatusCreated, viewFromSession(data))
}

// Login serves POST /api/auth/login. Accounts with TOTP enabled receive a
// session that still needs 2FA verification before admin access works.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.users.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondInternal(w, "login lookup failed", err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	data := &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   !user.TOTPEnabled,
	}
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		respondInternal(w, "session create failed", err)
		return
	}

	respondData(w, http.StatusOK, viewFromSession(data))
}

// Logout serves POST /api/auth/logout.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	respondData(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// Me serves GET /api/auth/me for the signed-in user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respondData(w, http.StatusOK, viewFromSession(sess))
}

// TwoFASetup serves POST /api/auth/2fa/setup. It generates a fresh TOTP
// secret, stores it unverified, and returns the otpauth URL plus a QR code
// as base64 PNG for authenticator enrollment.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		respondInternal(w, "totp generate failed", err)
		return
	}

	if err := a.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		respondInternal(w, "save totp secret failed", err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		respondInternal(w, "qr code generation failed", err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{
		"secret":  key.Secret(),
		"url":     key.URL(),
		"qr_code": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify serves POST /api/auth/2fa/verify. A valid code enables TOTP
// on first use and marks the session as fully authenticated.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		respondInternal(w, "user lookup failed", err)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		respondError(w, http.StatusConflict, "two-factor setup has not been started")
		return
	}

	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "invalid verification code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			respondInternal(w, "enable totp failed", err)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		respondInternal(w, "session update failed", err)
		return
	}

	respondData(w, http.StatusOK, viewFromSession(sess))
}

// ListNotifications serves GET /api/notifications for the signed-in user.
func (a *Auth) ListNotifications(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := a.notifications.ListByUser(sess.UserID)
	if err != nil {
		respondInternal(w, "notification listing failed", err)
		return
	}

	unread, err := a.notifications.CountUnread(sess.UserID)
	if err != nil {
		respondInternal(w, "notification count failed", err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"notifications": items,
		"unread_count":  unread,
	})
}

// MarkNotificationRead serves POST /api/notifications/{id}/read. Users can
// only mark their own notifications.
func (a *Auth) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ok, err := a.notifications.MarkRead(id, sess.UserID)
	if err != nil {
		respondInternal(w, "notification update failed", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "marked as read"})
}
