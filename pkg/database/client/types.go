/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/lib/pq"
)

const (
	DESC = "desc"
	ASC  = "asc"

	CreateTime = "create_time"
)

// feedback status workflow values
const (
	StatusOpen        = "open"
	StatusUnderReview = "under_review"
	StatusPlanned     = "planned"
	StatusInProg      = "in_progress"
	StatusDone        = "done"
	StatusDeclined    = "declined"
)

// moderation states
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// feedback sources
const (
	SourceWidget    = "widget"
	SourceDashboard = "dashboard"
	SourceAPI       = "api"
	SourceEmail     = "email"
)

// board moderation policies
const (
	PolicyAutoApprove     = "auto_approve"
	PolicyRequireApproval = "require_approval"
)

// team roles
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// auth token kinds
const (
	TokenKindEmailVerify   = "email_verify"
	TokenKindPasswordReset = "password_reset"
)

// duplicate suggestion states
const (
	DuplicatePending   = "pending"
	DuplicateDismissed = "dismissed"
	DuplicateMerged    = "merged"
)

// pipeline result states stored on the feedback row
const (
	AIStatusCompleted = "completed"
	AIStatusPartial   = "partial"
	AIStatusFailed    = "failed"
)

type User struct {
	Id            int64          `db:"id"`
	UserId        string         `db:"user_id"`
	Email         string         `db:"email"`
	Name          sql.NullString `db:"name"`
	PasswordHash  sql.NullString `db:"password_hash"`
	AvatarUrl     sql.NullString `db:"avatar_url"`
	Provider      sql.NullString `db:"provider"`
	ProviderId    sql.NullString `db:"provider_id"`
	EmailVerified bool           `db:"email_verified"`
	CreateTime    pq.NullTime    `db:"create_time"`
	UpdateTime    pq.NullTime    `db:"update_time"`
}

type Session struct {
	Id               int64          `db:"id"`
	SessionId        string         `db:"session_id"`
	UserId           string         `db:"user_id"`
	TokenHash        string         `db:"token_hash"`
	RefreshTokenHash sql.NullString `db:"refresh_token_hash"`
	ExpireTime       pq.NullTime    `db:"expire_time"`
	RefreshExpire    pq.NullTime    `db:"refresh_expire_time"`
	RevokeTime       pq.NullTime    `db:"revoke_time"`
	CreateTime       pq.NullTime    `db:"create_time"`
}

type AuthToken struct {
	Id         int64       `db:"id"`
	UserId     string      `db:"user_id"`
	Kind       string      `db:"kind"`
	TokenHash  string      `db:"token_hash"`
	ExpireTime pq.NullTime `db:"expire_time"`
	UsedTime   pq.NullTime `db:"used_time"`
	CreateTime pq.NullTime `db:"create_time"`
}

type Workspace struct {
	Id          int64          `db:"id"`
	Slug        string         `db:"slug"`
	Name        string         `db:"name"`
	OwnerUserId sql.NullString `db:"owner_user_id"`
	ApiKeyHash  sql.NullString `db:"api_key_hash"`
	CreateTime  pq.NullTime    `db:"create_time"`
	UpdateTime  pq.NullTime    `db:"update_time"`
}

type Board struct {
	Id               int64       `db:"id"`
	WorkspaceId      int64       `db:"workspace_id"`
	Slug             string      `db:"slug"`
	Name             string      `db:"name"`
	ModerationPolicy string      `db:"moderation_policy"`
	Archived         bool        `db:"archived"`
	CreateTime       pq.NullTime `db:"create_time"`
}

type EndUser struct {
	Id             int64          `db:"id"`
	EndUserId      string         `db:"end_user_id"`
	WorkspaceId    int64          `db:"workspace_id"`
	ExternalUserId string         `db:"external_user_id"`
	Email          sql.NullString `db:"email"`
	Name           sql.NullString `db:"name"`
	CreateTime     pq.NullTime    `db:"create_time"`
}

type Feedback struct {
	Id            int64           `db:"id"`
	FeedbackId    string          `db:"feedback_id"`
	WorkspaceId   int64           `db:"workspace_id"`
	BoardId       int64           `db:"board_id"`
	Title         string          `db:"title"`
	Body          sql.NullString  `db:"body"`
	Status        string          `db:"status"`
	Moderation    string          `db:"moderation"`
	Source        string          `db:"source"`
	AuthorEndUser sql.NullString  `db:"author_end_user_id"`
	AuthorUser    sql.NullString  `db:"author_user_id"`
	Hidden        bool            `db:"hidden"`
	MergedInto    sql.NullString  `db:"merged_into"`
	MergedAt      pq.NullTime     `db:"merged_at"`
	AICategory    sql.NullString  `db:"ai_category"`
	AISentiment   sql.NullFloat64 `db:"ai_sentiment"`
	AIUrgency     sql.NullString  `db:"ai_urgency"`
	AIPriority    sql.NullInt64   `db:"ai_priority"`
	AISummary     sql.NullString  `db:"ai_summary"`
	AIStatus      sql.NullString  `db:"ai_status"`
	AIProcessedAt pq.NullTime     `db:"ai_processed_at"`
	CreateTime    pq.NullTime     `db:"create_time"`
	UpdateTime    pq.NullTime     `db:"update_time"`
}

// FeedbackWithVotes decorates a feedback row with the aggregated vote total.
type FeedbackWithVotes struct {
	Feedback
	VoteCount int64 `db:"vote_count"`
}

type Vote struct {
	Id         int64       `db:"id"`
	FeedbackId string      `db:"feedback_id"`
	VoterId    string      `db:"voter_id"`
	Weight     int         `db:"weight"`
	CreateTime pq.NullTime `db:"create_time"`
}

type Comment struct {
	Id         int64          `db:"id"`
	CommentId  string         `db:"comment_id"`
	FeedbackId string         `db:"feedback_id"`
	AuthorId   sql.NullString `db:"author_id"`
	AuthorName sql.NullString `db:"author_name"`
	Body       string         `db:"body"`
	IsInternal bool           `db:"is_internal"`
	CreateTime pq.NullTime    `db:"create_time"`
}

type Tag struct {
	Id          int64       `db:"id"`
	TagId       string      `db:"tag_id"`
	WorkspaceId int64       `db:"workspace_id"`
	Name        string      `db:"name"`
	Color       string      `db:"color"`
	CreateTime  pq.NullTime `db:"create_time"`
}

type FeedbackTag struct {
	Id         int64  `db:"id"`
	FeedbackId string `db:"feedback_id"`
	TagId      string `db:"tag_id"`
}

type TeamMembership struct {
	Id          int64       `db:"id"`
	UserId      string      `db:"user_id"`
	WorkspaceId int64       `db:"workspace_id"`
	Role        string      `db:"role"`
	CreateTime  pq.NullTime `db:"create_time"`
	UpdateTime  pq.NullTime `db:"update_time"`
}

// TeamMember joins a membership row with its user profile for listing.
type TeamMember struct {
	TeamMembership
	Email string         `db:"email"`
	Name  sql.NullString `db:"name"`
}

type Invitation struct {
	Id           int64          `db:"id"`
	InvitationId string         `db:"invitation_id"`
	WorkspaceId  int64          `db:"workspace_id"`
	Email        string         `db:"email"`
	Role         string         `db:"role"`
	TokenHash    string         `db:"token_hash"`
	InvitedBy    sql.NullString `db:"invited_by"`
	ExpireTime   pq.NullTime    `db:"expire_time"`
	AcceptTime   pq.NullTime    `db:"accept_time"`
	RevokeTime   pq.NullTime    `db:"revoke_time"`
	CreateTime   pq.NullTime    `db:"create_time"`
}

type Theme struct {
	Id          int64          `db:"id"`
	ThemeId     string         `db:"theme_id"`
	WorkspaceId int64          `db:"workspace_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreateTime  pq.NullTime    `db:"create_time"`
	UpdateTime  pq.NullTime    `db:"update_time"`
}

type DuplicateSuggestion struct {
	Id          int64          `db:"id"`
	FeedbackId  string         `db:"feedback_id"`
	SuggestedId string         `db:"suggested_duplicate_id"`
	Score       float64        `db:"score"`
	Status      string         `db:"status"`
	ReviewedBy  sql.NullString `db:"reviewed_by"`
	ReviewTime  pq.NullTime    `db:"review_time"`
	CreateTime  pq.NullTime    `db:"create_time"`
}

type AIUsage struct {
	Id            int64  `db:"id"`
	WorkspaceId   int64  `db:"workspace_id"`
	Date          string `db:"date"`
	EmbedCalls    int64  `db:"embed_calls"`
	ClassifyCalls int64  `db:"classify_calls"`
	TokensIn      int64  `db:"tokens_in"`
	TokensOut     int64  `db:"tokens_out"`
}

type AuditLog struct {
	Id          int64          `db:"id"`
	WorkspaceId sql.NullInt64  `db:"workspace_id"`
	ActorUserId sql.NullString `db:"actor_user_id"`
	Action      string         `db:"action"`
	TargetKind  sql.NullString `db:"target_kind"`
	TargetId    sql.NullString `db:"target_id"`
	Detail      sql.NullString `db:"detail"`
	CreateTime  pq.NullTime    `db:"create_time"`
}

func getFieldTags(obj interface{}) map[string]string {
	result := make(map[string]string)
	t := reflect.TypeOf(obj)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		result[strings.ToLower(field.Name)] = field.Tag.Get("db")
	}
	return result
}

// generateCommand generates SQL command string using reflection.
// Iterates through struct fields and builds column and value lists,
// skipping fields with the specified ignoreTag.
func generateCommand(obj interface{}, format, ignoreTag string) string {
	t := reflect.TypeOf(obj)
	columns := make([]string, 0, t.NumField())
	values := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("db")
		if tag == ignoreTag {
			continue
		}
		columns = append(columns, tag)
		values = append(values, fmt.Sprintf(":%s", tag))
	}
	cmd := fmt.Sprintf(format, strings.Join(columns, ", "), strings.Join(values, ", "))
	return cmd
}

// GetFieldTag returns the FieldTag value.
func GetFieldTag(tags map[string]string, name string) string {
	name = strings.ToLower(name)
	return tags[name]
}

// GetFeedbackFieldTags returns the FeedbackFieldTags value.
func GetFeedbackFieldTags() map[string]string {
	f := Feedback{}
	return getFieldTags(f)
}
