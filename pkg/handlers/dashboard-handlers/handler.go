/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package dashboardhandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
	defaultUserLimit = 50
	maxUserLimit     = 200
	maxUserOffset    = 10000
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
}

// NewHandler creates the dashboard handler.
func NewHandler(dbClient *dbclient.Client) *Handler {
	return &Handler{dbClient: dbClient}
}

type StatsResponse struct {
	TotalFeedback int64            `json:"total_feedback"`
	ByStatus      map[string]int64 `json:"by_status"`
	EndUsers      int              `json:"end_users"`
}

type UserActivityItem struct {
	EndUserId      string `json:"end_user_id"`
	ExternalUserId string `json:"external_user_id"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	FeedbackCount  int64  `json:"feedback_count"`
	VoteCount      int64  `json:"vote_count"`
	FirstSeen      string `json:"first_seen,omitempty"`
}

func (h *Handler) Stats(c *gin.Context)  { handle(c, h.stats) }
func (h *Handler) Trends(c *gin.Context) { handle(c, h.trends) }
func (h *Handler) Users(c *gin.Context)  { handle(c, h.users) }

func (h *Handler) stats(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	counts, err := h.dbClient.CountFeedbackByStatus(ctx, workspaceId)
	if err != nil {
		return nil, err
	}
	endUsers, err := h.dbClient.CountEndUsers(ctx, workspaceId)
	if err != nil {
		return nil, err
	}

	// Every workflow status shows up even when it has no rows.
	byStatus := map[string]int64{
		dbclient.StatusOpen:        0,
		dbclient.StatusUnderReview: 0,
		dbclient.StatusPlanned:     0,
		dbclient.StatusInProg:      0,
		dbclient.StatusDone:        0,
		dbclient.StatusDeclined:    0,
	}
	var total int64
	for _, count := range counts {
		byStatus[count.Status] = count.Count
		total += count.Count
	}
	return &StatsResponse{TotalFeedback: total, ByStatus: byStatus, EndUsers: endUsers}, nil
}

func (h *Handler) trends(c *gin.Context) (interface{}, error) {
	if interval := c.Query("interval"); interval != "" && interval != "day" {
		return nil, cverrors.NewBadRequest("only the day interval is supported")
	}
	days := apiutils.ParseIntQuery(c, "days", defaultTrendDays, 1, maxTrendDays)
	points, err := h.dbClient.SelectFeedbackTrend(c.Request.Context(), authority.CurrentWorkspaceId(c), days)
	if err != nil {
		return nil, err
	}
	items := make([]gin.H, 0, len(points))
	for _, point := range points {
		items = append(items, gin.H{"date": point.Day, "count": point.Count})
	}
	return gin.H{"interval": "day", "days": days, "items": items}, nil
}

func (h *Handler) users(c *gin.Context) (interface{}, error) {
	limit := apiutils.ParseIntQuery(c, "limit", defaultUserLimit, 1, maxUserLimit)
	offset := apiutils.ParseIntQuery(c, "offset", 0, 0, maxUserOffset)

	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	activity, err := h.dbClient.SelectEndUserActivity(ctx, workspaceId, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := h.dbClient.CountEndUsers(ctx, workspaceId)
	if err != nil {
		return nil, err
	}
	items := make([]*UserActivityItem, 0, len(activity))
	for _, row := range activity {
		items = append(items, toUserActivityItem(row))
	}
	return gin.H{"items": items, "total": total, "limit": limit, "offset": offset}, nil
}

func toUserActivityItem(row *dbclient.EndUserActivity) *UserActivityItem {
	item := &UserActivityItem{
		EndUserId:      row.EndUserId,
		ExternalUserId: row.ExternalUserId,
		FeedbackCount:  row.FeedbackCount,
		VoteCount:      row.VoteCount,
	}
	if row.Email.Valid {
		item.Email = row.Email.String
	}
	if row.Name.Valid {
		item.Name = row.Name.String
	}
	if row.CreateTime.Valid {
		item.FirstSeen = row.CreateTime.Time.UTC().Format(time.RFC3339)
	}
	return item
}
