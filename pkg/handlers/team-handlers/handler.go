/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package teamhandlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
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
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/idgen"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/notification"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

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

// NewHandler creates the team management handler.
func NewHandler(dbClient *dbclient.Client, mailer *notification.Mailer) *Handler {
	return &Handler{dbClient: dbClient, mailer: mailer}
}

type InviteRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type MemberItem struct {
	UserId   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at,omitempty"`
}

type InvitationItem struct {
	InvitationId string `json:"invitation_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	InvitedBy    string `json:"invited_by,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

func (h *Handler) ListMembers(c *gin.Context)  { handle(c, h.listMembers) }
func (h *Handler) Invite(c *gin.Context)       { handle(c, h.invite) }
func (h *Handler) ListInvites(c *gin.Context)  { handle(c, h.listInvites) }
func (h *Handler) RemoveMember(c *gin.Context) { handle(c, h.removeMember) }
func (h *Handler) ChangeRole(c *gin.Context)   { handle(c, h.changeRole) }
func (h *Handler) Accept(c *gin.Context)       { handle(c, h.accept) }

func (h *Handler) listMembers(c *gin.Context) (interface{}, error) {
	members, err := h.dbClient.SelectTeamMembers(c.Request.Context(), authority.CurrentWorkspaceId(c))
	if err != nil {
		return nil, err
	}
	items := make([]*MemberItem, 0, len(members))
	for _, member := range members {
		items = append(items, toMemberItem(member))
	}
	return gin.H{"items": items}, nil
}

func (h *Handler) invite(c *gin.Context) (interface{}, error) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, cverrors.NewBadRequest("a valid email is required")
	}
	if !IsAssignableRole(req.Role) {
		return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown role %q", req.Role))
	}
	if err := CanInvite(authority.CurrentRole(c), req.Role); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)

	existing, err := h.dbClient.GetUserByEmail(ctx, email)
	if err != nil && !cverrors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		membership, err := h.dbClient.GetMembership(ctx, existing.UserId, workspaceId)
		if err == nil && membership != nil {
			return nil, cverrors.NewConflict(cverrors.AlreadyMember, "user is already a member of this workspace")
		}
		if err != nil && err != sql.ErrNoRows && !cverrors.IsNotFound(err) {
			return nil, err
		}
	}
	if pending, err := h.dbClient.GetPendingInvitation(ctx, workspaceId, email); err == nil && pending != nil {
		return nil, cverrors.NewConflict(cverrors.PendingInvitation, "an invitation for this email is already pending")
	} else if err != nil && err != sql.ErrNoRows && !cverrors.IsNotFound(err) {
		return nil, err
	}

	// Known users can skip the email round trip when configured.
	if existing != nil && config.IsInviteExistingDirectly() {
		membership := &dbclient.TeamMembership{
			UserId:      existing.UserId,
			WorkspaceId: workspaceId,
			Role:        req.Role,
		}
		if err := h.dbClient.InsertMembership(ctx, membership); err != nil {
			return nil, err
		}
		h.audit(c, "team.member_added", existing.UserId, "direct add as "+req.Role)
		c.Status(http.StatusCreated)
		return gin.H{"message": "User added to team", "membership_id": membership.Id}, nil
	}

	token, err := crypto.GenerateToken()
	if err != nil {
		return nil, err
	}
	invitation := &dbclient.Invitation{
		InvitationId: idgen.New(common.InvitationIdPrefix),
		WorkspaceId:  workspaceId,
		Email:        email,
		Role:         req.Role,
		TokenHash:    crypto.HashToken(token),
		InvitedBy:    sql.NullString{String: authority.CurrentUserId(c), Valid: true},
		ExpireTime:   pq.NullTime{Time: time.Now().Add(time.Duration(config.GetInvitationExpireHours()) * time.Hour), Valid: true},
	}
	if err := h.dbClient.InsertInvitation(ctx, invitation); err != nil {
		return nil, err
	}
	h.sendInvitationMail(ctx, c, email, token)
	h.audit(c, "team.invited", invitation.InvitationId, "invited "+email+" as "+req.Role)
	c.Status(http.StatusCreated)
	return gin.H{"invitation_id": invitation.InvitationId}, nil
}

func (h *Handler) listInvites(c *gin.Context) (interface{}, error) {
	invitations, err := h.dbClient.SelectInvitations(c.Request.Context(), authority.CurrentWorkspaceId(c))
	if err != nil {
		return nil, err
	}
	items := make([]*InvitationItem, 0, len(invitations))
	for _, invitation := range invitations {
		items = append(items, toInvitationItem(invitation))
	}
	return gin.H{"items": items}, nil
}

// removeMember handles DELETE team/:memberId and, through the shared param
// position, DELETE team/invites/:inviteId. The revoke branch keys off the
// literal "invites" segment.
func (h *Handler) removeMember(c *gin.Context) (interface{}, error) {
	memberId := c.Param("memberId")
	if inviteId := c.Param("inviteId"); inviteId != "" {
		if memberId != "invites" {
			return nil, cverrors.NewNotFoundWithMessage(c.Request.URL.Path + " not found")
		}
		return h.revokeInvite(c, inviteId)
	}
	if memberId == "invites" {
		return nil, cverrors.NewNotFoundWithMessage(c.Request.URL.Path + " not found")
	}

	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	target, err := h.dbClient.GetMembership(ctx, memberId, workspaceId)
	if err != nil {
		return nil, cverrors.NewNotFound("member", memberId)
	}
	if err := CanRemove(authority.CurrentRole(c), authority.CurrentUserId(c), target.Role, target.UserId); err != nil {
		return nil, err
	}
	if err := h.dbClient.DeleteMembership(ctx, memberId, workspaceId); err != nil {
		return nil, err
	}
	h.audit(c, "team.member_removed", memberId, "")
	return gin.H{"message": "Member removed"}, nil
}

func (h *Handler) revokeInvite(c *gin.Context, inviteId string) (interface{}, error) {
	if err := CanManageInvites(authority.CurrentRole(c)); err != nil {
		return nil, err
	}
	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	if _, err := h.dbClient.GetInvitationById(ctx, workspaceId, inviteId); err != nil {
		return nil, cverrors.NewNotFoundWithReason(cverrors.InvitationNotFound, "invitation not found")
	}
	if err := h.dbClient.RevokeInvitation(ctx, workspaceId, inviteId); err != nil {
		return nil, err
	}
	h.audit(c, "team.invite_revoked", inviteId, "")
	return gin.H{"message": "Invitation revoked"}, nil
}

func (h *Handler) changeRole(c *gin.Context) (interface{}, error) {
	memberId := c.Param("memberId")
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	if !IsAssignableRole(req.Role) {
		return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown role %q", req.Role))
	}

	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	target, err := h.dbClient.GetMembership(ctx, memberId, workspaceId)
	if err != nil {
		return nil, cverrors.NewNotFound("member", memberId)
	}
	if err := CanChangeRole(authority.CurrentRole(c), authority.CurrentUserId(c), target.Role, target.UserId, req.Role); err != nil {
		return nil, err
	}
	if target.Role != req.Role {
		if err := h.dbClient.UpdateMembershipRole(ctx, memberId, workspaceId, req.Role); err != nil {
			return nil, err
		}
		h.audit(c, "team.role_changed", memberId, target.Role+" -> "+req.Role)
	}
	return gin.H{"user_id": memberId, "role": req.Role}, nil
}

// accept redeems an invitation token for the authenticated caller. It is
// not workspace scoped: the workspace comes from the invitation itself.
func (h *Handler) accept(c *gin.Context) (interface{}, error) {
	token := c.Param("token")
	if token == "" {
		return nil, cverrors.NewBadRequest("token is required")
	}
	ctx := c.Request.Context()
	invitation, err := h.dbClient.GetInvitationByTokenHash(ctx, crypto.HashToken(token))
	if err != nil {
		return nil, cverrors.NewNotFoundWithReason(cverrors.InvitationNotFound, "invitation not found")
	}
	if invitation.RevokeTime.Valid {
		return nil, cverrors.NewNotFoundWithReason(cverrors.InvitationNotFound, "invitation not found")
	}
	if invitation.AcceptTime.Valid {
		return nil, cverrors.NewConflict(cverrors.AlreadyMember, "invitation has already been accepted")
	}
	if invitation.ExpireTime.Valid && invitation.ExpireTime.Time.Before(time.Now()) {
		return nil, cverrors.NewBadRequestWithReason(cverrors.InvitationExpired, "invitation has expired")
	}
	callerEmail := strings.ToLower(c.GetString(common.UserEmail))
	if callerEmail != strings.ToLower(invitation.Email) {
		return nil, cverrors.NewForbiddenWithReason(cverrors.EmailMismatch, "invitation was issued to a different email")
	}

	userId := c.GetString(common.UserId)
	if existing, err := h.dbClient.GetMembership(ctx, userId, invitation.WorkspaceId); err == nil && existing != nil {
		return nil, cverrors.NewConflict(cverrors.AlreadyMember, "you are already a member of this workspace")
	}
	membership := &dbclient.TeamMembership{
		UserId:      userId,
		WorkspaceId: invitation.WorkspaceId,
		Role:        invitation.Role,
	}
	if err := h.dbClient.InsertMembership(ctx, membership); err != nil {
		return nil, err
	}
	if err := h.dbClient.MarkInvitationAccepted(ctx, invitation.InvitationId); err != nil {
		klog.ErrorS(err, "failed to mark invitation accepted", "invitation", invitation.InvitationId)
	}

	workspace := gin.H{"id": invitation.WorkspaceId}
	if ws, err := h.workspaceById(ctx, invitation.WorkspaceId); err == nil {
		workspace["slug"] = ws.Slug
		workspace["name"] = ws.Name
	}
	return gin.H{"role": invitation.Role, "workspace": workspace}, nil
}

func (h *Handler) workspaceById(ctx context.Context, workspaceId int64) (*dbclient.Workspace, error) {
	return h.dbClient.GetWorkspaceById(ctx, workspaceId)
}

// sendInvitationMail delivers the plaintext token once. Failures are logged
// and never fail the request.
func (h *Handler) sendInvitationMail(ctx context.Context, c *gin.Context, email, token string) {
	if h.mailer == nil {
		return
	}
	workspaceName := c.GetString(common.WorkspaceSlug)
	if ws, err := h.workspaceById(ctx, authority.CurrentWorkspaceId(c)); err == nil && ws.Name != "" {
		workspaceName = ws.Name
	}
	inviterName := c.GetString(common.UserEmail)
	if user, err := h.dbClient.GetUserById(ctx, authority.CurrentUserId(c)); err == nil && user.Name.Valid {
		inviterName = user.Name.String
	}
	if err := h.mailer.SendInvitation(ctx, email, workspaceName, inviterName, token); err != nil {
		klog.ErrorS(err, "failed to send invitation email", "email", email)
	}
}

func (h *Handler) audit(c *gin.Context, action, targetId, detail string) {
	log := &dbclient.AuditLog{
		WorkspaceId: sql.NullInt64{Int64: authority.CurrentWorkspaceId(c), Valid: true},
		ActorUserId: sql.NullString{String: authority.CurrentUserId(c), Valid: true},
		Action:      action,
		TargetKind:  sql.NullString{String: "team", Valid: true},
		TargetId:    sql.NullString{String: targetId, Valid: targetId != ""},
		Detail:      sql.NullString{String: detail, Valid: detail != ""},
	}
	if err := h.dbClient.InsertAuditLog(c.Request.Context(), log); err != nil {
		klog.ErrorS(err, "failed to insert audit log", "action", action)
	}
}

func toMemberItem(member *dbclient.TeamMember) *MemberItem {
	item := &MemberItem{
		UserId: member.UserId,
		Email:  member.Email,
		Role:   member.Role,
	}
	if member.Name.Valid {
		item.Name = member.Name.String
	}
	if member.CreateTime.Valid {
		item.JoinedAt = member.CreateTime.Time.UTC().Format(time.RFC3339)
	}
	return item
}

func toInvitationItem(invitation *dbclient.Invitation) *InvitationItem {
	item := &InvitationItem{
		InvitationId: invitation.InvitationId,
		Email:        invitation.Email,
		Role:         invitation.Role,
	}
	if invitation.InvitedBy.Valid {
		item.InvitedBy = invitation.InvitedBy.String
	}
	if invitation.ExpireTime.Valid {
		item.ExpiresAt = invitation.ExpireTime.Time.UTC().Format(time.RFC3339)
	}
	if invitation.CreateTime.Valid {
		item.CreatedAt = invitation.CreateTime.Time.UTC().Format(time.RFC3339)
	}
	return item
}
