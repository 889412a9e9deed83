/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package aihandlers

import (
	"github.com/gin-gonic/gin"

	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
)

// InitAIRouters registers the AI review surface on a workspace scoped
// route group. The per-item duplicates route reuses the :id param name of
// the feedback routes sharing the GET tree.
func InitAIRouters(group *gin.RouterGroup, h *Handler, controller *authority.AccessController) {
	group.GET("ai/themes", controller.RequireRole(dbclient.RoleViewer), h.ListThemes)
	group.POST("ai/themes", controller.RequireRole(dbclient.RoleMember), h.CreateTheme)
	group.PATCH("ai/themes/:themeId", controller.RequireRole(dbclient.RoleMember), h.PatchTheme)
	group.DELETE("ai/themes/:themeId", controller.RequireRole(dbclient.RoleMember), h.DeleteTheme)

	group.GET("ai/duplicates", controller.RequireRole(dbclient.RoleViewer), h.ListDuplicates)
	group.POST("ai/duplicates/:id", controller.RequireRole(dbclient.RoleMember), h.ReviewDuplicate)
	group.GET("feedback/:id/duplicates", controller.RequireRole(dbclient.RoleViewer), h.ItemDuplicates)

	group.POST("ai/process", controller.RequireRole(dbclient.RoleMember), h.Process)
	group.POST("ai/process-pending", controller.RequireRole(dbclient.RoleMember), h.ProcessPending)
	group.GET("ai/usage", controller.RequireRole(dbclient.RoleViewer), h.Usage)
}
