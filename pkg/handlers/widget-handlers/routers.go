/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package widgethandlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

// InitWidgetRouters registers the public widget surface. The board-scoped
// routes use dynamic workspace/board slugs at a position where static admin
// routes also live, so they are matched by the fallback dispatcher instead
// of the route tree.
func InitWidgetRouters(e *gin.Engine, h *Handler) {
	e.GET("/health", h.Health)
	e.GET("/widget.js", h.WidgetScript)
	e.NoRoute(h.Dispatch)
}

// Dispatch matches /api/v1/{workspace}/{board}/feedback... paths that the
// static route tree cannot express. Anything else is a 404.
func (h *Handler) Dispatch(c *gin.Context) {
	parts := strings.Split(strings.Trim(c.Request.URL.Path, "/"), "/")
	if len(parts) >= 5 && parts[0] == "api" && parts[1] == "v1" && parts[4] == "feedback" {
		workspaceSlug, boardSlug := parts[2], parts[3]
		switch {
		case len(parts) == 5 && c.Request.Method == http.MethodGet:
			h.ListFeedback(c, workspaceSlug, boardSlug)
			return
		case len(parts) == 5 && c.Request.Method == http.MethodPost:
			h.CreateFeedback(c, workspaceSlug, boardSlug)
			return
		case len(parts) == 7 && parts[6] == "votes" && c.Request.Method == http.MethodPost:
			h.Vote(c, workspaceSlug, boardSlug, parts[5])
			return
		case len(parts) == 7 && parts[6] == "comments" && c.Request.Method == http.MethodPost:
			h.Comment(c, workspaceSlug, boardSlug, parts[5])
			return
		}
	}
	apiutils.AbortWithApiError(c, cverrors.NewNotFoundWithMessage(c.Request.URL.Path+" not found"))
}
