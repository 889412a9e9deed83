/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package errors

/*
   Reason codes are the stable, machine-readable half of the error envelope
   {"error":{"code","message"}}. Clients branch on the code; the message is
   free to change.
*/

// general
const (
	InternalError       = "INTERNAL_ERROR"
	ValidationError     = "VALIDATION_ERROR"
	Unauthorized        = "UNAUTHORIZED"
	Forbidden           = "FORBIDDEN"
	NotFound            = "NOT_FOUND"
	AlreadyExists       = "ALREADY_EXISTS"
	UpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	RateLimited         = "RATE_LIMITED"
)

// authentication
const (
	InvalidCredentials   = "INVALID_CREDENTIALS"
	TokenExpired         = "TOKEN_EXPIRED"
	InvalidSignature     = "INVALID_SIGNATURE"
	MalformedToken       = "MALFORMED_TOKEN"
	SessionNotFound      = "SESSION_NOT_FOUND"
	SessionExpired       = "SESSION_EXPIRED"
	EmailNotVerified     = "EMAIL_NOT_VERIFIED"
	EmailAlreadyInUse    = "EMAIL_ALREADY_IN_USE"
	WeakPassword         = "WEAK_PASSWORD"
	OAuthStateMismatch   = "OAUTH_STATE_MISMATCH"
	OAuthEmailMissing    = "OAUTH_EMAIL_MISSING"
	VerificationExpired  = "VERIFICATION_EXPIRED"
	ResetTokenInvalid    = "RESET_TOKEN_INVALID"
	PasswordLoginBlocked = "PASSWORD_LOGIN_BLOCKED"
)

// team and invitations
const (
	InsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CannotModifyOwner       = "CANNOT_MODIFY_OWNER"
	CannotModifySelf        = "CANNOT_MODIFY_SELF"
	CannotRemoveOwner       = "CANNOT_REMOVE_OWNER"
	PendingInvitation       = "PENDING_INVITATION"
	AlreadyMember           = "ALREADY_MEMBER"
	InvitationExpired       = "INVITATION_EXPIRED"
	EmailMismatch           = "EMAIL_MISMATCH"
	InvitationNotFound      = "INVITATION_NOT_FOUND"
)

// feedback
const (
	BoardArchived     = "BOARD_ARCHIVED"
	InvalidTransition = "INVALID_TRANSITION"
	AlreadyMerged     = "ALREADY_MERGED"
	MergeCycle        = "MERGE_CYCLE"
	BulkLimitExceeded = "BULK_LIMIT_EXCEEDED"
)
