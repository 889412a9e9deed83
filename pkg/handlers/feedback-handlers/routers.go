/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package feedbackhandlers

import (
	"github.com/gin-gonic/gin"

	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
)

// InitFeedbackRouters registers the admin feedback surface on a workspace
// scoped route group. Viewers may read; members and above may mutate.
func InitFeedbackRouters(group *gin.RouterGroup, h *Handler, controller *authority.AccessController) {
	group.GET("feedback", controller.RequireRole(dbclient.RoleViewer), h.List)
	group.GET("feedback/:id", controller.RequireRole(dbclient.RoleViewer), h.Get)
	group.PATCH("feedback/:id", controller.RequireRole(dbclient.RoleMember), h.Patch)
	group.DELETE("feedback/:id", controller.RequireRole(dbclient.RoleAdmin), h.Delete)
	group.POST("feedback/bulk", controller.RequireRole(dbclient.RoleMember), h.Bulk)
}
