/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package authhandlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
)

// InitAuthRouters registers the auth surface. Logout is the only route that
// needs an authenticated caller; everything else bootstraps authentication.
func InitAuthRouters(e *gin.Engine, h *Handler, controller *authority.AccessController) {
	group := e.Group(common.APIRootPath + "/auth")
	{
		group.POST("signup", h.Signup)
		group.POST("login", h.Login)
		group.POST("refresh", h.Refresh)
		group.POST("verify-email", h.VerifyEmail)
		group.POST("forgot-password", h.ForgotPassword)
		group.POST("reset-password", h.ResetPassword)
		group.POST("resend-verification", h.ResendVerification)
		group.GET("oauth/:provider/start", h.OAuthStart)
		group.GET("oauth/:provider/callback", h.OAuthCallback)

		group.POST("logout", controller.Authenticate(), h.Logout)
	}
}
