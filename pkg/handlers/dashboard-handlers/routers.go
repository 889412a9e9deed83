/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package dashboardhandlers

import (
	"github.com/gin-gonic/gin"

	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
)

// InitDashboardRouters registers the dashboard surface on a workspace
// scoped route group. The whole surface is read-only.
func InitDashboardRouters(group *gin.RouterGroup, h *Handler, controller *authority.AccessController) {
	group.GET("stats", controller.RequireRole(dbclient.RoleViewer), h.Stats)
	group.GET("analytics/trends", controller.RequireRole(dbclient.RoleViewer), h.Trends)
	group.GET("analytics/users", controller.RequireRole(dbclient.RoleViewer), h.Users)
}
