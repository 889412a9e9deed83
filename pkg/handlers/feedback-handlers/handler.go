/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package feedbackhandlers

import (
	"database/sql"
	"fmt"
	"net/http"
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
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

const (
	maxTitleLength       = 160
	maxDescriptionLength = 4000
	maxSearchLength      = 200
	maxAdminLimit        = 200
	maxAdminOffset       = 10000
	defaultAdminLimit    = 50
	maxBulkIds           = 100
)

// sortColumns whitelists the admin list sort keys and maps them to SQL
// order expressions.
var sortColumns = map[string]string{
	"created_at": "create_time",
	"updated_at": "update_time",
	"title":      "title",
	"vote_count": "(SELECT COALESCE(SUM(weight), 0) FROM votes v WHERE v.feedback_id = " + dbclient.TPFeedback + ".feedback_id)",
}

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

// NewHandler creates the admin feedback handler.
func NewHandler(dbClient *dbclient.Client) *Handler {
	return &Handler{dbClient: dbClient}
}

type PatchFeedbackRequest struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Status          *string   `json:"status,omitempty"`
	ModerationState *string   `json:"moderation_state,omitempty"`
	IsHidden        *bool     `json:"is_hidden,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
}

type BulkUpdates struct {
	Status          *string `json:"status,omitempty"`
	ModerationState *string `json:"moderation_state,omitempty"`
	IsHidden        *bool   `json:"is_hidden,omitempty"`
}

type BulkRequest struct {
	Ids     []string    `json:"ids"`
	Updates BulkUpdates `json:"updates"`
}

type BulkResponse struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []BulkRowError `json:"failed"`
}

type BulkRowError struct {
	Id    string `json:"id"`
	Error string `json:"error"`
}

type AdminFeedbackItem struct {
	Id              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Status          string   `json:"status"`
	ModerationState string   `json:"moderation_state"`
	Source          string   `json:"source"`
	IsHidden        bool     `json:"is_hidden"`
	MergedInto      string   `json:"merged_into,omitempty"`
	VoteCount       int64    `json:"vote_count"`
	AICategory      string   `json:"ai_category,omitempty"`
	AISentiment     *float64 `json:"ai_sentiment,omitempty"`
	AIUrgency       string   `json:"ai_urgency,omitempty"`
	AIPriority      *int64   `json:"ai_priority,omitempty"`
	AISummary       string   `json:"ai_summary,omitempty"`
	AIStatus        string   `json:"ai_status,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

type ListResponse struct {
	Items  []AdminFeedbackItem `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type FeedbackDetail struct {
	AdminFeedbackItem
	Tags     []TagItem     `json:"tags"`
	Comments []CommentItem `json:"comments"`
}

type TagItem struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CommentItem struct {
	Id         string `json:"id"`
	Content    string `json:"content"`
	AuthorName string `json:"author_name,omitempty"`
	IsInternal bool   `json:"is_internal"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// List returns the filtered, sorted admin feedback page.
func (h *Handler) List(c *gin.Context) {
	handle(c, h.list)
}

// Get returns one feedback item with tags and comments.
func (h *Handler) Get(c *gin.Context) {
	handle(c, h.get)
}

// Patch applies a partial update, including tag replacement and workflow
// status changes.
func (h *Handler) Patch(c *gin.Context) {
	handle(c, h.patch)
}

// Delete removes a feedback item with its votes and comments.
func (h *Handler) Delete(c *gin.Context) {
	handle(c, h.delete)
}

// Bulk applies the same update to up to 100 items in one transaction.
func (h *Handler) Bulk(c *gin.Context) {
	handle(c, h.bulk)
}

func (h *Handler) list(c *gin.Context) (interface{}, error) {
	workspaceId := authority.CurrentWorkspaceId(c)

	query := sqrl.And{sqrl.Eq{"workspace_id": workspaceId}}
	if statuses := splitMulti(c.QueryArray("status")); len(statuses) > 0 {
		query = append(query, sqrl.Eq{"status": statuses})
	}
	if states := splitMulti(c.QueryArray("moderation_state")); len(states) > 0 {
		query = append(query, sqrl.Eq{"moderation": states})
	}
	if search := c.Query("search"); search != "" {
		if utf8.RuneCountInString(search) > maxSearchLength {
			return nil, cverrors.NewBadRequest("search must be at most 200 characters")
		}
		pattern := "%" + search + "%"
		query = append(query, sqrl.Or{
			sqrl.ILike{"title": pattern},
			sqrl.ILike{"body": pattern},
		})
	}

	sortColumn, ok := sortColumns[c.DefaultQuery("sort", "created_at")]
	if !ok {
		return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown sort key: %s", c.Query("sort")))
	}
	order := strings.ToLower(c.DefaultQuery("order", dbclient.DESC))
	if order != dbclient.ASC && order != dbclient.DESC {
		return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown order: %s", order))
	}

	limit := apiutils.ParseIntQuery(c, "limit", defaultAdminLimit, 1, maxAdminLimit)
	offset := apiutils.ParseIntQuery(c, "offset", 0, 0, maxAdminOffset)

	ctx := c.Request.Context()
	total, err := h.dbClient.CountFeedback(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := h.dbClient.SelectFeedback(ctx, query, []string{sortColumn + " " + order}, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.FeedbackId)
	}
	votes, err := h.dbClient.SelectVoteCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]AdminFeedbackItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toAdminItem(row, votes[row.FeedbackId]))
	}
	return ListResponse{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (h *Handler) get(c *gin.Context) (interface{}, error) {
	// "recent" shares the :id route position
	if c.Param("id") == "recent" {
		return h.recent(c)
	}
	ctx := c.Request.Context()
	feedback, err := h.getScopedFeedback(c)
	if err != nil {
		return nil, err
	}

	votes, err := h.dbClient.CountVotes(ctx, feedback.FeedbackId)
	if err != nil {
		return nil, err
	}
	tags, err := h.dbClient.SelectFeedbackTags(ctx, feedback.FeedbackId)
	if err != nil {
		return nil, err
	}
	comments, err := h.dbClient.SelectComments(ctx, feedback.FeedbackId, true)
	if err != nil {
		return nil, err
	}

	detail := FeedbackDetail{
		AdminFeedbackItem: toAdminItem(feedback, votes),
		Tags:              make([]TagItem, 0, len(tags)),
		Comments:          make([]CommentItem, 0, len(comments)),
	}
	for _, tag := range tags {
		detail.Tags = append(detail.Tags, TagItem{Id: tag.TagId, Name: tag.Name, Color: tag.Color})
	}
	for _, comment := range comments {
		item := CommentItem{
			Id:         comment.CommentId,
			Content:    comment.Body,
			AuthorName: comment.AuthorName.String,
			IsInternal: comment.IsInternal,
		}
		if comment.CreateTime.Valid {
			item.CreatedAt = comment.CreateTime.Time.Format(time.RFC3339)
		}
		detail.Comments = append(detail.Comments, item)
	}
	return detail, nil
}

// recent returns the newest feedback of the workspace for the dashboard.
func (h *Handler) recent(c *gin.Context) (interface{}, error) {
	limit := apiutils.ParseIntQuery(c, "limit", 20, 1, maxAdminLimit)

	ctx := c.Request.Context()
	rows, err := h.dbClient.SelectFeedback(ctx,
		sqrl.Eq{"workspace_id": authority.CurrentWorkspaceId(c)},
		[]string{dbclient.CreateTime + " " + dbclient.DESC}, limit, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.FeedbackId)
	}
	votes, err := h.dbClient.SelectVoteCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]AdminFeedbackItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toAdminItem(row, votes[row.FeedbackId]))
	}
	return gin.H{"items": items}, nil
}

func (h *Handler) patch(c *gin.Context) (interface{}, error) {
	request := &PatchFeedbackRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}

	feedback, err := h.getScopedFeedback(c)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if request.Title != nil {
		if n := utf8.RuneCountInString(*request.Title); n < 1 || n > maxTitleLength {
			return nil, cverrors.NewBadRequest("title must be between 1 and 160 characters")
		}
		fields["title"] = *request.Title
	}
	if request.Description != nil {
		if utf8.RuneCountInString(*request.Description) > maxDescriptionLength {
			return nil, cverrors.NewBadRequest("description must be at most 4000 characters")
		}
		fields["body"] = *request.Description
	}
	if request.ModerationState != nil {
		if !isKnownModeration(*request.ModerationState) {
			return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown moderation state: %s", *request.ModerationState))
		}
		fields["moderation"] = *request.ModerationState
	}
	if request.IsHidden != nil {
		fields["hidden"] = *request.IsHidden
	}

	reverse := false
	if request.Status != nil && *request.Status != feedback.Status {
		if !IsKnownStatus(*request.Status) {
			return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown status: %s", *request.Status))
		}
		if !CanTransition(feedback.Status, *request.Status) {
			return nil, cverrors.NewBadRequestWithReason(cverrors.InvalidTransition,
				fmt.Sprintf("cannot transition from %s to %s", feedback.Status, *request.Status))
		}
		reverse = IsReverseTransition(feedback.Status, *request.Status)
		fields["status"] = *request.Status
	}

	ctx := c.Request.Context()
	if len(fields) > 0 {
		if err = h.dbClient.UpdateFeedbackFields(ctx, feedback.FeedbackId, fields); err != nil {
			return nil, err
		}
	}
	if request.Tags != nil {
		if err = h.dbClient.ReplaceFeedbackTags(ctx, feedback.WorkspaceId, feedback.FeedbackId, *request.Tags); err != nil {
			return nil, err
		}
	}
	if len(fields) == 0 && request.Tags == nil {
		return nil, cverrors.NewBadRequest("no fields to update")
	}

	if reverse {
		h.audit(c, "feedback.status_reverted", feedback.FeedbackId,
			fmt.Sprintf("%s -> %s", feedback.Status, *request.Status))
	}

	updated, err := h.dbClient.GetFeedbackById(ctx, feedback.FeedbackId)
	if err != nil {
		return nil, err
	}
	votes, err := h.dbClient.CountVotes(ctx, updated.FeedbackId)
	if err != nil {
		return nil, err
	}
	return toAdminItem(updated, votes), nil
}

func (h *Handler) delete(c *gin.Context) (interface{}, error) {
	feedback, err := h.getScopedFeedback(c)
	if err != nil {
		return nil, err
	}
	if err = h.dbClient.DeleteFeedback(c.Request.Context(), feedback.WorkspaceId, feedback.FeedbackId); err != nil {
		return nil, err
	}
	h.audit(c, "feedback.deleted", feedback.FeedbackId, feedback.Title)
	return gin.H{"message": "feedback deleted"}, nil
}

func (h *Handler) bulk(c *gin.Context) (interface{}, error) {
	request := &BulkRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	if len(request.Ids) == 0 {
		return nil, cverrors.NewBadRequest("ids must not be empty")
	}
	if len(request.Ids) > maxBulkIds {
		return nil, cverrors.NewBadRequestWithReason(cverrors.BulkLimitExceeded,
			"at most 100 ids per bulk request")
	}

	fields := map[string]interface{}{}
	if request.Updates.Status != nil {
		if !IsKnownStatus(*request.Updates.Status) {
			return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown status: %s", *request.Updates.Status))
		}
		fields["status"] = *request.Updates.Status
	}
	if request.Updates.ModerationState != nil {
		if !isKnownModeration(*request.Updates.ModerationState) {
			return nil, cverrors.NewBadRequest(fmt.Sprintf("unknown moderation state: %s", *request.Updates.ModerationState))
		}
		fields["moderation"] = *request.Updates.ModerationState
	}
	if request.Updates.IsHidden != nil {
		fields["hidden"] = *request.Updates.IsHidden
	}
	if len(fields) == 0 {
		return nil, cverrors.NewBadRequest("at least one update field is required")
	}

	results, err := h.dbClient.BulkUpdateFeedback(c.Request.Context(),
		authority.CurrentWorkspaceId(c), request.Ids, fields)
	if err != nil {
		return nil, err
	}

	response := BulkResponse{Succeeded: []string{}, Failed: []BulkRowError{}}
	for _, result := range results {
		if result.OK {
			response.Succeeded = append(response.Succeeded, result.FeedbackId)
		} else {
			response.Failed = append(response.Failed, BulkRowError{Id: result.FeedbackId, Error: result.Error})
		}
	}
	h.audit(c, "feedback.bulk_updated", "", fmt.Sprintf("%d items", len(request.Ids)))
	return response, nil
}

// getScopedFeedback loads the :id item and hides items of other workspaces
// behind a 404.
func (h *Handler) getScopedFeedback(c *gin.Context) (*dbclient.Feedback, error) {
	feedbackId := c.Param("id")
	feedback, err := h.dbClient.GetFeedbackById(c.Request.Context(), feedbackId)
	if err != nil || feedback.WorkspaceId != authority.CurrentWorkspaceId(c) {
		return nil, cverrors.NewNotFound("feedback", feedbackId)
	}
	return feedback, nil
}

func (h *Handler) audit(c *gin.Context, action, targetId, detail string) {
	log := &dbclient.AuditLog{
		WorkspaceId: sql.NullInt64{Int64: authority.CurrentWorkspaceId(c), Valid: true},
		ActorUserId: sql.NullString{String: authority.CurrentUserId(c), Valid: true},
		Action:      action,
		TargetKind:  sql.NullString{String: "feedback", Valid: true},
		TargetId:    sql.NullString{String: targetId, Valid: targetId != ""},
		Detail:      sql.NullString{String: detail, Valid: detail != ""},
	}
	if err := h.dbClient.InsertAuditLog(c.Request.Context(), log); err != nil {
		klog.ErrorS(err, "failed to insert audit log", "action", action)
	}
}

func splitMulti(values []string) []string {
	var result []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}

func isKnownModeration(state string) bool {
	switch state {
	case dbclient.ModerationPending, dbclient.ModerationApproved, dbclient.ModerationRejected:
		return true
	}
	return false
}

func toAdminItem(feedback *dbclient.Feedback, votes int64) AdminFeedbackItem {
	item := AdminFeedbackItem{
		Id:              feedback.FeedbackId,
		Title:           feedback.Title,
		Description:     feedback.Body.String,
		Status:          feedback.Status,
		ModerationState: feedback.Moderation,
		Source:          feedback.Source,
		IsHidden:        feedback.Hidden,
		MergedInto:      feedback.MergedInto.String,
		VoteCount:       votes,
		AICategory:      feedback.AICategory.String,
		AIUrgency:       feedback.AIUrgency.String,
		AISummary:       feedback.AISummary.String,
		AIStatus:        feedback.AIStatus.String,
	}
	if feedback.AISentiment.Valid {
		item.AISentiment = &feedback.AISentiment.Float64
	}
	if feedback.AIPriority.Valid {
		item.AIPriority = &feedback.AIPriority.Int64
	}
	if feedback.CreateTime.Valid {
		item.CreatedAt = feedback.CreateTime.Time.Format(time.RFC3339)
	}
	if feedback.UpdateTime.Valid {
		item.UpdatedAt = feedback.UpdateTime.Time.Format(time.RFC3339)
	}
	return item
}
