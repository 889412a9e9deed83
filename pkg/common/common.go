/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package common

const (
	DefaultVersion = "v1"
	APIRootPath    = "api/" + DefaultVersion

	JsonContentType = "application/json; charset=utf-8"
	JsContentType   = "application/javascript; charset=utf-8"

	// gin context keys set by the authority middleware
	UserId        = "userId"
	UserEmail     = "userEmail"
	WorkspaceId   = "workspaceId"
	WorkspaceSlug = "workspaceSlug"
	MemberRole    = "memberRole"
	SessionId     = "sessionId"
)

// id prefixes
const (
	UserIdPrefix       = "usr"
	SessionIdPrefix    = "ses"
	FeedbackIdPrefix   = "fb"
	CommentIdPrefix    = "cmt"
	TagIdPrefix        = "tag"
	EndUserIdPrefix    = "eu"
	InvitationIdPrefix = "inv"
	ThemeIdPrefix      = "thm"
)
