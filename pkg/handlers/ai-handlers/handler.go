/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package aihandlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	sqrl "github.com/Masterminds/squirrel"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/idgen"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

const (
	maxThemeNameLength = 100
	maxThemeDescLength = 1000
	maxProcessIds      = 100
	maxPendingBatch    = 500
	defaultUsageDays   = 30
	maxUsageDays       = 365
	defaultDupLimit    = 50
	maxDupLimit        = 200
	maxDupOffset       = 10000
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
	queue    taskqueue.Queue
}

// NewHandler creates the AI review handler.
func NewHandler(dbClient *dbclient.Client, queue taskqueue.Queue) *Handler {
	return &Handler{dbClient: dbClient, queue: queue}
}

type ThemeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

type PatchThemeRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ThemeItem struct {
	ThemeId     string `json:"theme_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type ReviewRequest struct {
	Action string `json:"action" binding:"required"`
}

type ProcessRequest struct {
	FeedbackIds []string `json:"feedback_ids" binding:"required"`
}

type SuggestionItem struct {
	Id                   int64   `json:"id"`
	FeedbackId           string  `json:"feedback_id"`
	SuggestedDuplicateId string  `json:"suggested_duplicate_id"`
	Score                float64 `json:"similarity_score"`
	Status               string  `json:"status"`
	ReviewedBy           string  `json:"reviewed_by,omitempty"`
	ReviewedAt           string  `json:"reviewed_at,omitempty"`
	CreatedAt            string  `json:"created_at,omitempty"`
}

func (h *Handler) ListThemes(c *gin.Context)      { handle(c, h.listThemes) }
func (h *Handler) CreateTheme(c *gin.Context)     { handle(c, h.createTheme) }
func (h *Handler) PatchTheme(c *gin.Context)      { handle(c, h.patchTheme) }
func (h *Handler) DeleteTheme(c *gin.Context)     { handle(c, h.deleteTheme) }
func (h *Handler) ListDuplicates(c *gin.Context)  { handle(c, h.listDuplicates) }
func (h *Handler) ReviewDuplicate(c *gin.Context) { handle(c, h.reviewDuplicate) }
func (h *Handler) ItemDuplicates(c *gin.Context)  { handle(c, h.itemDuplicates) }
func (h *Handler) Process(c *gin.Context)         { handle(c, h.process) }
func (h *Handler) ProcessPending(c *gin.Context)  { handle(c, h.processPending) }
func (h *Handler) Usage(c *gin.Context)           { handle(c, h.usage) }

func (h *Handler) listThemes(c *gin.Context) (interface{}, error) {
	themes, err := h.dbClient.SelectThemes(c.Request.Context(), authority.CurrentWorkspaceId(c))
	if err != nil {
		return nil, err
	}
	items := make([]*ThemeItem, 0, len(themes))
	for _, theme := range themes {
		items = append(items, toThemeItem(theme))
	}
	return gin.H{"items": items}, nil
}

func (h *Handler) createTheme(c *gin.Context) (interface{}, error) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	name, err := validateThemeName(req.Name)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(req.Description) > maxThemeDescLength {
		return nil, cverrors.NewBadRequest("description must be at most 1000 characters")
	}
	theme := &dbclient.Theme{
		ThemeId:     idgen.New(common.ThemeIdPrefix),
		WorkspaceId: authority.CurrentWorkspaceId(c),
		Name:        name,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
	}
	if err := h.dbClient.InsertTheme(c.Request.Context(), theme); err != nil {
		return nil, err
	}
	c.Status(http.StatusCreated)
	return toThemeItem(theme), nil
}

func (h *Handler) patchTheme(c *gin.Context) (interface{}, error) {
	var req PatchThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		name, err := validateThemeName(*req.Name)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.Description != nil {
		if utf8.RuneCountInString(*req.Description) > maxThemeDescLength {
			return nil, cverrors.NewBadRequest("description must be at most 1000 characters")
		}
		fields["description"] = *req.Description
	}
	if len(fields) == 0 {
		return nil, cverrors.NewBadRequest("no fields to update")
	}

	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	themeId := c.Param("themeId")
	if err := h.dbClient.UpdateThemeFields(ctx, workspaceId, themeId, fields); err != nil {
		return nil, err
	}
	theme, err := h.dbClient.GetThemeById(ctx, workspaceId, themeId)
	if err != nil {
		return nil, err
	}
	return toThemeItem(theme), nil
}

func (h *Handler) deleteTheme(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	themeId := c.Param("themeId")
	if _, err := h.dbClient.GetThemeById(ctx, workspaceId, themeId); err != nil {
		return nil, err
	}
	if err := h.dbClient.DeleteTheme(ctx, workspaceId, themeId); err != nil {
		return nil, err
	}
	return gin.H{"message": "Theme deleted"}, nil
}

func (h *Handler) listDuplicates(c *gin.Context) (interface{}, error) {
	status := c.Query("status")
	if status != "" && !isKnownSuggestionStatus(status) {
		return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown status %q", status))
	}
	limit := apiutils.ParseIntQuery(c, "limit", defaultDupLimit, 1, maxDupLimit)
	offset := apiutils.ParseIntQuery(c, "offset", 0, 0, maxDupOffset)
	suggestions, err := h.dbClient.SelectDuplicateSuggestions(c.Request.Context(),
		authority.CurrentWorkspaceId(c), status, c.Query("feedback_id"), limit, offset)
	if err != nil {
		return nil, err
	}
	return gin.H{"items": toSuggestionItems(suggestions), "limit": limit, "offset": offset}, nil
}

// reviewDuplicate dismisses or merges one suggestion. Merge folds the newer
// item into the suggested existing one.
func (h *Handler) reviewDuplicate(c *gin.Context) (interface{}, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, cverrors.NewBadRequest("suggestion id must be an integer")
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}

	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	suggestion, err := h.dbClient.GetDuplicateSuggestionById(ctx, workspaceId, id)
	if err != nil {
		return nil, err
	}
	if suggestion.Status != dbclient.DuplicatePending {
		return nil, cverrors.NewConflict(cverrors.ValidationError, "suggestion has already been reviewed")
	}

	reviewerId := authority.CurrentUserId(c)
	switch req.Action {
	case "dismiss":
		if err := h.dbClient.ReviewDuplicateSuggestion(ctx, suggestion.FeedbackId, suggestion.SuggestedId,
			dbclient.DuplicateDismissed, reviewerId); err != nil {
			return nil, err
		}
		h.audit(c, "ai.duplicate_dismissed", suggestion.FeedbackId, suggestion.SuggestedId)
		return gin.H{"status": dbclient.DuplicateDismissed}, nil
	case "merge":
		if err := h.dbClient.MergeFeedback(ctx, workspaceId, suggestion.FeedbackId, suggestion.SuggestedId); err != nil {
			return nil, err
		}
		if err := h.dbClient.ReviewDuplicateSuggestion(ctx, suggestion.FeedbackId, suggestion.SuggestedId,
			dbclient.DuplicateMerged, reviewerId); err != nil {
			return nil, err
		}
		h.audit(c, "ai.duplicate_merged", suggestion.FeedbackId, "merged into "+suggestion.SuggestedId)
		return gin.H{"status": dbclient.DuplicateMerged, "merged_into": suggestion.SuggestedId}, nil
	default:
		return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown action %q", req.Action))
	}
}

func (h *Handler) itemDuplicates(c *gin.Context) (interface{}, error) {
	feedbackId := c.Param("id")
	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	feedback, err := h.dbClient.GetFeedbackById(ctx, feedbackId)
	if err != nil || feedback.WorkspaceId != workspaceId {
		return nil, cverrors.NewNotFound("feedback", feedbackId)
	}
	suggestions, err := h.dbClient.SelectDuplicateSuggestions(ctx, workspaceId, "", feedbackId, 0, 0)
	if err != nil {
		return nil, err
	}
	return gin.H{"items": toSuggestionItems(suggestions)}, nil
}

func (h *Handler) process(c *gin.Context) (interface{}, error) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	if len(req.FeedbackIds) == 0 {
		return nil, cverrors.NewBadRequest("feedback_ids must not be empty")
	}
	if len(req.FeedbackIds) > maxProcessIds {
		return nil, cverrors.NewBadRequestWithReason(cverrors.BulkLimitExceeded,
			fmt.Sprintf("at most %d ids per request", maxProcessIds))
	}

	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	enqueued := make([]string, 0, len(req.FeedbackIds))
	for _, feedbackId := range req.FeedbackIds {
		feedback, err := h.dbClient.GetFeedbackById(ctx, feedbackId)
		if err != nil || feedback.WorkspaceId != workspaceId {
			return nil, cverrors.NewNotFound("feedback", feedbackId)
		}
		if err := h.enqueuePipeline(ctx, feedbackId, workspaceId); err != nil {
			return nil, err
		}
		enqueued = append(enqueued, feedbackId)
	}
	h.audit(c, "ai.reprocessed", "", fmt.Sprintf("%d items", len(enqueued)))
	c.Status(http.StatusAccepted)
	return gin.H{"enqueued": len(enqueued), "feedback_ids": enqueued}, nil
}

// processPending re-enqueues every item the pipeline has not completed.
func (h *Handler) processPending(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	query := sqrl.And{
		sqrl.Eq{"workspace_id": workspaceId},
		sqrl.Eq{"merged_into": nil},
		sqrl.Or{
			sqrl.Eq{"ai_status": nil},
			sqrl.Eq{"ai_status": dbclient.AIStatusFailed},
		},
	}
	pending, err := h.dbClient.SelectFeedback(ctx, query, []string{"create_time " + dbclient.ASC}, maxPendingBatch, 0)
	if err != nil {
		return nil, err
	}
	for _, feedback := range pending {
		if err := h.enqueuePipeline(ctx, feedback.FeedbackId, workspaceId); err != nil {
			klog.ErrorS(err, "failed to enqueue pipeline task", "feedback", feedback.FeedbackId)
		}
	}
	h.audit(c, "ai.reprocess_pending", "", fmt.Sprintf("%d items", len(pending)))
	c.Status(http.StatusAccepted)
	return gin.H{"enqueued": len(pending)}, nil
}

func (h *Handler) usage(c *gin.Context) (interface{}, error) {
	days := apiutils.ParseIntQuery(c, "days", defaultUsageDays, 1, maxUsageDays)
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -(days - 1)).Format("2006-01-02")
	to := now.Format("2006-01-02")

	rows, err := h.dbClient.SelectAIUsage(c.Request.Context(), authority.CurrentWorkspaceId(c), from, to)
	if err != nil {
		return nil, err
	}
	var embedCalls, classifyCalls, tokensIn, tokensOut int64
	items := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		embedCalls += row.EmbedCalls
		classifyCalls += row.ClassifyCalls
		tokensIn += row.TokensIn
		tokensOut += row.TokensOut
		items = append(items, gin.H{
			"date":           row.Date,
			"embed_calls":    row.EmbedCalls,
			"classify_calls": row.ClassifyCalls,
			"tokens_in":      row.TokensIn,
			"tokens_out":     row.TokensOut,
		})
	}
	return gin.H{
		"from":  from,
		"to":    to,
		"items": items,
		"totals": gin.H{
			"embed_calls":    embedCalls,
			"classify_calls": classifyCalls,
			"tokens_in":      tokensIn,
			"tokens_out":     tokensOut,
		},
	}, nil
}

func (h *Handler) enqueuePipeline(ctx context.Context, feedbackId string, workspaceId int64) error {
	payload, _ := json.Marshal(taskqueue.PipelinePayload{
		FeedbackId:  feedbackId,
		WorkspaceId: workspaceId,
	})
	_, err := h.queue.Publish(ctx, taskqueue.TopicFullPipeline, payload)
	return err
}

func (h *Handler) audit(c *gin.Context, action, targetId, detail string) {
	log := &dbclient.AuditLog{
		WorkspaceId: sql.NullInt64{Int64: authority.CurrentWorkspaceId(c), Valid: true},
		ActorUserId: sql.NullString{String: authority.CurrentUserId(c), Valid: true},
		Action:      action,
		TargetKind:  sql.NullString{String: "ai", Valid: true},
		TargetId:    sql.NullString{String: targetId, Valid: targetId != ""},
		Detail:      sql.NullString{String: detail, Valid: detail != ""},
	}
	if err := h.dbClient.InsertAuditLog(c.Request.Context(), log); err != nil {
		klog.ErrorS(err, "failed to insert audit log", "action", action)
	}
}

func validateThemeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", cverrors.NewBadRequest("name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxThemeNameLength {
		return "", cverrors.NewBadRequest("name must be at most 100 characters")
	}
	return name, nil
}

func isKnownSuggestionStatus(status string) bool {
	switch status {
	case dbclient.DuplicatePending, dbclient.DuplicateDismissed, dbclient.DuplicateMerged:
		return true
	}
	return false
}

func toThemeItem(theme *dbclient.Theme) *ThemeItem {
	item := &ThemeItem{
		ThemeId: theme.ThemeId,
		Name:    theme.Name,
	}
	if theme.Description.Valid {
		item.Description = theme.Description.String
	}
	if theme.CreateTime.Valid {
		item.CreatedAt = theme.CreateTime.Time.UTC().Format(time.RFC3339)
	}
	return item
}

func toSuggestionItems(suggestions []*dbclient.DuplicateSuggestion) []*SuggestionItem {
	items := make([]*SuggestionItem, 0, len(suggestions))
	for _, suggestion := range suggestions {
		item := &SuggestionItem{
			Id:                   suggestion.Id,
			FeedbackId:           suggestion.FeedbackId,
			SuggestedDuplicateId: suggestion.SuggestedId,
			Score:                suggestion.Score,
			Status:               suggestion.Status,
		}
		if suggestion.ReviewedBy.Valid {
			item.ReviewedBy = suggestion.ReviewedBy.String
		}
		if suggestion.ReviewTime.Valid {
			item.ReviewedAt = suggestion.ReviewTime.Time.UTC().Format(time.RFC3339)
		}
		if suggestion.CreateTime.Valid {
			item.CreatedAt = suggestion.CreateTime.Time.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return items
}
