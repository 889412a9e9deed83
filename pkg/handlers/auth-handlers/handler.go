/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package authhandlers

import (
	"context"
	"database/sql"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/crypto"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/idgen"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/notification"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128

	// single wording for both unknown email and wrong password, so the
	// responses are indistinguishable
	invalidCredentialsMessage = "invalid email or password"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type handleFunc func(*gin.Context) (interface{}, error)

// handle executes the handler function and processes the response/error
func handle(c *gin.Context, fn handleFunc) {
	response, err := fn(c)
	if err != nil {
		apiutils.AbortWithApiError(c, err)
		return
	}
	code := http.StatusOK
	if c.Writer.Status() > 0 {
		code = c.Writer.Status()
	}
	switch responseType := response.(type) {
	case []byte:
		c.Data(code, common.JsonContentType, responseType)
	case string:
		c.Data(code, common.JsonContentType, []byte(responseType))
	default:
		c.JSON(code, responseType)
	}
}

type Handler struct {
	dbClient *dbclient.Client
	mailer   *notification.Mailer
}

// NewHandler creates the auth handler.
func NewHandler(dbClient *dbclient.Client, mailer *notification.Mailer) *Handler {
	return &Handler{
		dbClient: dbClient,
		mailer:   mailer,
	}
}

// Signup registers a new email/password account and opens a session.
func (h *Handler) Signup(c *gin.Context) {
	handle(c, h.signup)
}

// Login authenticates an email/password account and opens a session.
func (h *Handler) Login(c *gin.Context) {
	handle(c, h.login)
}

// Logout revokes the caller's session.
func (h *Handler) Logout(c *gin.Context) {
	handle(c, h.logout)
}

// Refresh exchanges a refresh token for a fresh access token.
func (h *Handler) Refresh(c *gin.Context) {
	handle(c, h.refresh)
}

// VerifyEmail consumes an email verification token.
func (h *Handler) VerifyEmail(c *gin.Context) {
	handle(c, h.verifyEmail)
}

// ForgotPassword issues a password reset token when the account exists.
func (h *Handler) ForgotPassword(c *gin.Context) {
	handle(c, h.forgotPassword)
}

// ResetPassword consumes a reset token and replaces the password.
func (h *Handler) ResetPassword(c *gin.Context) {
	handle(c, h.resetPassword)
}

// ResendVerification re-sends the verification mail for an unverified account.
func (h *Handler) ResendVerification(c *gin.Context) {
	handle(c, h.resendVerification)
}

func (h *Handler) signup(c *gin.Context) (interface{}, error) {
	request := &SignupRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	email, err := normalizeEmail(request.Email)
	if err != nil {
		return nil, err
	}
	if err = validatePassword(request.Password); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	if _, err = h.dbClient.GetUserByEmail(ctx, email); err == nil {
		return nil, cverrors.NewConflict(cverrors.EmailAlreadyInUse, "email is already in use")
	}

	passwordHash, err := crypto.HashPassword(request.Password, config.GetBcryptCost())
	if err != nil {
		return nil, cverrors.NewInternalError("failed to hash password")
	}
	user := &dbclient.User{
		UserId:       idgen.New(common.UserIdPrefix),
		Email:        email,
		Name:         sql.NullString{String: request.Name, Valid: request.Name != ""},
		PasswordHash: sql.NullString{String: passwordHash, Valid: true},
	}
	if err = h.dbClient.InsertUser(ctx, user); err != nil {
		return nil, cverrors.NewConflict(cverrors.EmailAlreadyInUse, "email is already in use")
	}

	h.sendVerificationMail(ctx, user)

	response, err := h.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	c.Status(http.StatusCreated)
	return response, nil
}

func (h *Handler) login(c *gin.Context) (interface{}, error) {
	request := &LoginRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	email, err := normalizeEmail(request.Email)
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	user, err := h.dbClient.GetUserByEmail(ctx, email)
	if err != nil {
		// burn a hash comparison so the timing matches the wrong-password path
		crypto.VerifyPassword("", request.Password)
		return nil, cverrors.NewUnauthorizedWithReason(cverrors.InvalidCredentials, invalidCredentialsMessage)
	}
	if !user.PasswordHash.Valid {
		return nil, cverrors.NewUnauthorizedWithReason(cverrors.PasswordLoginBlocked,
			"this account uses social login")
	}
	if !crypto.VerifyPassword(user.PasswordHash.String, request.Password) {
		return nil, cverrors.NewUnauthorizedWithReason(cverrors.InvalidCredentials, invalidCredentialsMessage)
	}
	if config.IsVerifiedEmailRequired() && !user.EmailVerified {
		return nil, cverrors.NewUnauthorizedWithReason(cverrors.EmailNotVerified, "email is not verified")
	}

	return h.openSession(ctx, user)
}

func (h *Handler) logout(c *gin.Context) (interface{}, error) {
	sessionId := c.GetString(common.SessionId)
	if sessionId == "" {
		return nil, cverrors.NewUnauthorized("missing bearer token")
	}
	if err := h.dbClient.RevokeSession(c.Request.Context(), sessionId); err != nil {
		return nil, err
	}
	return MessageResponse{Message: "logged out"}, nil
}

func (h *Handler) refresh(c *gin.Context) (interface{}, error) {
	request := &RefreshRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	if request.RefreshToken == "" {
		return nil, cverrors.NewBadRequest("refresh_token is required")
	}

	ctx := c.Request.Context()
	session, err := h.dbClient.GetSessionByRefreshHash(ctx, crypto.HashToken(request.RefreshToken))
	if err != nil {
		return nil, cverrors.NewUnauthorizedWithReason(cverrors.SessionNotFound, "refresh token not recognized")
	}
	if session.RefreshExpire.Valid && time.Now().After(session.RefreshExpire.Time) {
		return nil, cverrors.NewUnauthorizedWithReason(cverrors.SessionExpired, "refresh token has expired")
	}
	user, err := h.dbClient.GetUserById(ctx, session.UserId)
	if err != nil {
		return nil, cverrors.NewUnauthorizedWithReason(cverrors.SessionNotFound, "refresh token not recognized")
	}

	accessTTL := time.Duration(config.GetAccessTokenTTLSecond()) * time.Second
	accessToken, err := crypto.SignJWT([]byte(config.GetJwtSecret()), user.UserId, user.Email, accessTTL)
	if err != nil {
		return nil, cverrors.NewInternalError("failed to sign access token")
	}
	newExpire := time.Now().Add(accessTTL)
	if err = h.dbClient.RotateSessionToken(ctx, session.SessionId, crypto.HashToken(accessToken), newExpire); err != nil {
		return nil, err
	}

	return SessionResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   config.GetAccessTokenTTLSecond(),
		User:        toUserInfo(user),
	}, nil
}

func (h *Handler) verifyEmail(c *gin.Context) (interface{}, error) {
	token, err := tokenFromRequest(c)
	if err != nil {
		return nil, err
	}
	ctx := c.Request.Context()
	authToken, err := h.dbClient.ConsumeAuthToken(ctx, dbclient.TokenKindEmailVerify, crypto.HashToken(token))
	if err != nil {
		return nil, cverrors.NewBadRequestWithReason(cverrors.VerificationExpired,
			"verification link is invalid or has expired")
	}
	if err = h.dbClient.UpdateUserFields(ctx, authToken.UserId, map[string]interface{}{
		"email_verified": true,
	}); err != nil {
		return nil, err
	}
	return MessageResponse{Message: "email verified"}, nil
}

func (h *Handler) forgotPassword(c *gin.Context) (interface{}, error) {
	request := &EmailRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	email, err := normalizeEmail(request.Email)
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	if user, err := h.dbClient.GetUserByEmail(ctx, email); err == nil {
		token, err := h.issueAuthToken(ctx, user.UserId, dbclient.TokenKindPasswordReset,
			time.Duration(config.GetPasswordResetTTLSecond())*time.Second)
		if err != nil {
			return nil, err
		}
		if err = h.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
			klog.ErrorS(err, "failed to send password reset mail", "user", user.UserId)
		}
	}
	// identical response whether or not the account exists
	return MessageResponse{Message: "if the email exists, a reset link has been sent"}, nil
}

func (h *Handler) resetPassword(c *gin.Context) (interface{}, error) {
	request := &ResetPasswordRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	if request.Token == "" {
		return nil, cverrors.NewBadRequest("token is required")
	}
	if err := validatePassword(request.Password); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	authToken, err := h.dbClient.ConsumeAuthToken(ctx, dbclient.TokenKindPasswordReset, crypto.HashToken(request.Token))
	if err != nil {
		return nil, cverrors.NewBadRequestWithReason(cverrors.ResetTokenInvalid,
			"reset link is invalid or has expired")
	}
	passwordHash, err := crypto.HashPassword(request.Password, config.GetBcryptCost())
	if err != nil {
		return nil, cverrors.NewInternalError("failed to hash password")
	}
	if err = h.dbClient.UpdateUserFields(ctx, authToken.UserId, map[string]interface{}{
		"password_hash": passwordHash,
	}); err != nil {
		return nil, err
	}
	return MessageResponse{Message: "password updated"}, nil
}

func (h *Handler) resendVerification(c *gin.Context) (interface{}, error) {
	request := &EmailRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	email, err := normalizeEmail(request.Email)
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	if user, err := h.dbClient.GetUserByEmail(ctx, email); err == nil && !user.EmailVerified {
		h.sendVerificationMail(ctx, user)
	}
	return MessageResponse{Message: "if the email exists, a verification link has been sent"}, nil
}

// openSession creates a session row plus access and refresh tokens.
func (h *Handler) openSession(ctx context.Context, user *dbclient.User) (*SessionResponse, error) {
	accessTTL := time.Duration(config.GetAccessTokenTTLSecond()) * time.Second
	refreshTTL := time.Duration(config.GetRefreshTokenTTLSecond()) * time.Second

	accessToken, err := crypto.SignJWT([]byte(config.GetJwtSecret()), user.UserId, user.Email, accessTTL)
	if err != nil {
		return nil, cverrors.NewInternalError("failed to sign access token")
	}
	refreshToken, err := crypto.GenerateToken()
	if err != nil {
		return nil, cverrors.NewInternalError("failed to generate refresh token")
	}

	now := time.Now()
	session := &dbclient.Session{
		SessionId:        idgen.New(common.SessionIdPrefix),
		UserId:           user.UserId,
		TokenHash:        crypto.HashToken(accessToken),
		RefreshTokenHash: sql.NullString{String: crypto.HashToken(refreshToken), Valid: true},
		ExpireTime:       nullTime(now.Add(accessTTL)),
		RefreshExpire:    nullTime(now.Add(refreshTTL)),
	}
	if err = h.dbClient.InsertSession(ctx, session); err != nil {
		return nil, err
	}

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    config.GetAccessTokenTTLSecond(),
		User:         toUserInfo(user),
	}, nil
}

// issueAuthToken stores the hash of a fresh one-time token and returns the
// plaintext, which is only ever delivered out of band.
func (h *Handler) issueAuthToken(ctx context.Context, userId, kind string, ttl time.Duration) (string, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return "", cverrors.NewInternalError("failed to generate token")
	}
	authToken := &dbclient.AuthToken{
		UserId:     userId,
		Kind:       kind,
		TokenHash:  crypto.HashToken(token),
		ExpireTime: nullTime(time.Now().Add(ttl)),
	}
	if err = h.dbClient.InsertAuthToken(ctx, authToken); err != nil {
		return "", err
	}
	return token, nil
}

func (h *Handler) sendVerificationMail(ctx context.Context, user *dbclient.User) {
	token, err := h.issueAuthToken(ctx, user.UserId, dbclient.TokenKindEmailVerify,
		time.Duration(config.GetVerificationTTLSecond())*time.Second)
	if err != nil {
		klog.ErrorS(err, "failed to issue verification token", "user", user.UserId)
		return
	}
	if err = h.mailer.SendVerification(ctx, user.Email, token); err != nil {
		klog.ErrorS(err, "failed to send verification mail", "user", user.UserId)
	}
}

func tokenFromRequest(c *gin.Context) (string, error) {
	request := &TokenRequest{}
	if err := c.ShouldBindJSON(request); err == nil && request.Token != "" {
		return request.Token, nil
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", cverrors.NewBadRequest("token is required")
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", cverrors.NewBadRequest("email is invalid")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return cverrors.NewBadRequestWithReason(cverrors.WeakPassword,
			"password must be between 8 and 128 characters")
	}
	return nil
}

func toUserInfo(user *dbclient.User) UserInfo {
	return UserInfo{
		UserId:        user.UserId,
		Email:         user.Email,
		Name:          user.Name.String,
		AvatarUrl:     user.AvatarUrl.String,
		EmailVerified: user.EmailVerified,
	}
}

func nullTime(t time.Time) pq.NullTime {
	return pq.NullTime{Time: t, Valid: true}
}
