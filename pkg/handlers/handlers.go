/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	aihandlers "github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/ai-handlers"
	authhandlers "github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/auth-handlers"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
	dashboardhandlers "github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/dashboard-handlers"
	feedbackhandlers "github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/feedback-handlers"
	taghandlers "github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/tag-handlers"
	teamhandlers "github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/team-handlers"
	widgethandlers "github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/widget-handlers"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/metrics"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/notification"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

// InitHttpHandlers builds the gin engine and registers every surface. The
// admin surface is reachable under both /api/v1/workspaces/{slug} and the
// /api/v1/admin alias. The widget surface owns the NoRoute fallback, so it
// registers last.
func InitHttpHandlers(ctx context.Context, dbClient *dbclient.Client, queue taskqueue.Queue,
	mailer *notification.Mailer) (*gin.Engine, error) {
	e := gin.New()
	e.Use(apiutils.Logger(), gin.Recovery(), apiutils.Cors())

	e.GET("metrics", gin.WrapH(metrics.Handler()))

	controller := authority.NewAccessController(dbClient)

	authHandler := authhandlers.NewHandler(dbClient, mailer)
	authhandlers.InitAuthRouters(e, authHandler, controller)

	teamHandler := teamhandlers.NewHandler(dbClient, mailer)
	teamhandlers.InitInvitationRouters(e, teamHandler, controller)

	feedbackHandler := feedbackhandlers.NewHandler(dbClient)
	tagHandler := taghandlers.NewHandler(dbClient)
	dashboardHandler := dashboardhandlers.NewHandler(dbClient)
	aiHandler := aihandlers.NewHandler(dbClient, queue)

	workspaceGroups := []*gin.RouterGroup{
		e.Group(common.APIRootPath + "/workspaces/:slug"),
		e.Group(common.APIRootPath + "/admin/workspaces/:slug"),
	}
	for _, group := range workspaceGroups {
		group.Use(controller.Authenticate())
		feedbackhandlers.InitFeedbackRouters(group, feedbackHandler, controller)
		teamhandlers.InitTeamRouters(group, teamHandler, controller)
		taghandlers.InitTagRouters(group, tagHandler, controller)
		dashboardhandlers.InitDashboardRouters(group, dashboardHandler, controller)
		aihandlers.InitAIRouters(group, aiHandler, controller)
	}

	widgetHandler := widgethandlers.NewHandler(dbClient, queue)
	widgethandlers.InitWidgetRouters(e, widgetHandler)

	return e, nil
}
