/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package teamhandlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
)

// InitTeamRouters registers the team surface on a workspace scoped route
// group. Invite revocation shares the DELETE param position with member
// removal because a static "invites" segment cannot coexist with
// :memberId in the same method tree.
func InitTeamRouters(group *gin.RouterGroup, h *Handler, controller *authority.AccessController) {
	group.GET("team", controller.RequireRole(dbclient.RoleViewer), h.ListMembers)
	group.POST("team/invites", controller.RequireRole(dbclient.RoleAdmin), h.Invite)
	group.GET("team/invites", controller.RequireRole(dbclient.RoleAdmin), h.ListInvites)
	group.PATCH("team/:memberId", controller.RequireRole(dbclient.RoleAdmin), h.ChangeRole)
	group.DELETE("team/:memberId", controller.RequireRole(dbclient.RoleViewer), h.RemoveMember)
	group.DELETE("team/:memberId/:inviteId", controller.RequireRole(dbclient.RoleAdmin), h.RemoveMember)
}

// InitInvitationRouters registers the invitation acceptance endpoint. It is
// authenticated but not workspace scoped.
func InitInvitationRouters(e *gin.Engine, h *Handler, controller *authority.AccessController) {
	e.POST(common.APIRootPath+"/invitations/:token/accept", controller.Authenticate(), h.Accept)
}
