/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package taghandlers

import (
	"github.com/gin-gonic/gin"

	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
)

// InitTagRouters registers the tag surface on a workspace scoped route
// group.
func InitTagRouters(group *gin.RouterGroup, h *Handler, controller *authority.AccessController) {
	group.GET("tags", controller.RequireRole(dbclient.RoleViewer), h.List)
	group.POST("tags", controller.RequireRole(dbclient.RoleMember), h.Create)
	group.PATCH("tags/:tagId", controller.RequireRole(dbclient.RoleMember), h.Patch)
	group.DELETE("tags/:tagId", controller.RequireRole(dbclient.RoleMember), h.Delete)
}
