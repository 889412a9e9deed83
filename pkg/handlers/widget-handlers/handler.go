/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package widgethandlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/idgen"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

const (
	maxTitleLength       = 160
	maxDescriptionLength = 4000
	maxExternalIdLength  = 100
	maxSlugLength        = 100
	maxPublicLimit       = 100
	maxPublicOffset      = 1000
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

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
	cache    *gocache.Cache
}

// NewHandler creates the public widget handler. The cache holds resolved
// workspace and board rows so the hot submission path stays at one query.
func NewHandler(dbClient *dbclient.Client, queue taskqueue.Queue) *Handler {
	ttl := time.Duration(config.GetWidgetCacheTTLSecond()) * time.Second
	return &Handler{
		dbClient: dbClient,
		queue:    queue,
		cache:    gocache.New(ttl, 10*ttl),
	}
}

type CreateFeedbackRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	ExternalUserId string `json:"externalUserId,omitempty"`
}

type VoteRequest struct {
	ExternalUserId string `json:"externalUserId"`
}

type CommentRequest struct {
	Content        string `json:"content"`
	ExternalUserId string `json:"externalUserId,omitempty"`
}

type FeedbackItem struct {
	Id              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status"`
	ModerationState string `json:"moderation_state"`
	VoteCount       int64  `json:"vote_count"`
	CreatedAt       string `json:"created_at,omitempty"`
}

type CommentItem struct {
	Id         string `json:"id"`
	FeedbackId string `json:"feedback_id"`
	Content    string `json:"content"`
	AuthorName string `json:"author_name,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListFeedback serves the public board view.
func (h *Handler) ListFeedback(c *gin.Context, workspaceSlug, boardSlug string) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		return h.listFeedback(c, workspaceSlug, boardSlug)
	})
}

// CreateFeedback accepts a widget submission and queues the AI pipeline.
func (h *Handler) CreateFeedback(c *gin.Context, workspaceSlug, boardSlug string) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		return h.createFeedback(c, workspaceSlug, boardSlug)
	})
}

// Vote records an idempotent vote and returns the current total.
func (h *Handler) Vote(c *gin.Context, workspaceSlug, boardSlug, feedbackId string) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		return h.vote(c, workspaceSlug, boardSlug, feedbackId)
	})
}

// Comment adds a public comment to a feedback item.
func (h *Handler) Comment(c *gin.Context, workspaceSlug, boardSlug, feedbackId string) {
	handle(c, func(c *gin.Context) (interface{}, error) {
		return h.comment(c, workspaceSlug, boardSlug, feedbackId)
	})
}

func (h *Handler) listFeedback(c *gin.Context, workspaceSlug, boardSlug string) (interface{}, error) {
	_, board, err := h.resolveBoard(c.Request.Context(), workspaceSlug, boardSlug, false)
	if err != nil {
		return nil, err
	}

	limit := apiutils.ParseIntQuery(c, "limit", config.GetWidgetDefaultLimit(), 1, maxPublicLimit)
	offset := apiutils.ParseIntQuery(c, "offset", 0, 0, maxPublicOffset)
	status := c.Query("status")

	items, err := h.dbClient.SelectFeedbackWithVotes(c.Request.Context(), board.Id, status, limit, offset)
	if err != nil {
		return nil, err
	}
	result := make([]FeedbackItem, 0, len(items))
	for _, item := range items {
		result = append(result, toFeedbackItem(&item.Feedback, item.VoteCount))
	}
	return gin.H{"items": result}, nil
}

func (h *Handler) createFeedback(c *gin.Context, workspaceSlug, boardSlug string) (interface{}, error) {
	request := &CreateFeedbackRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	if n := utf8.RuneCountInString(request.Title); n < 1 || n > maxTitleLength {
		return nil, cverrors.NewBadRequest("title must be between 1 and 160 characters")
	}
	if utf8.RuneCountInString(request.Description) > maxDescriptionLength {
		return nil, cverrors.NewBadRequest("description must be at most 4000 characters")
	}
	if len(request.ExternalUserId) > maxExternalIdLength {
		return nil, cverrors.NewBadRequest("externalUserId must be at most 100 characters")
	}

	ctx := c.Request.Context()
	workspace, board, err := h.resolveBoard(ctx, workspaceSlug, boardSlug, true)
	if err != nil {
		return nil, err
	}
	if board.Archived {
		return nil, cverrors.NewBadRequestWithReason(cverrors.BoardArchived, "board is archived")
	}

	var authorId sql.NullString
	if request.ExternalUserId != "" {
		endUser, err := h.resolveEndUser(ctx, workspace.Id, request.ExternalUserId)
		if err != nil {
			return nil, err
		}
		authorId = sql.NullString{String: endUser.EndUserId, Valid: true}
	}

	moderation := dbclient.ModerationApproved
	if board.ModerationPolicy == dbclient.PolicyRequireApproval {
		moderation = dbclient.ModerationPending
	}

	feedback := &dbclient.Feedback{
		FeedbackId:    idgen.New(common.FeedbackIdPrefix),
		WorkspaceId:   workspace.Id,
		BoardId:       board.Id,
		Title:         request.Title,
		Body:          sql.NullString{String: request.Description, Valid: request.Description != ""},
		Status:        dbclient.StatusOpen,
		Moderation:    moderation,
		Source:        dbclient.SourceWidget,
		AuthorEndUser: authorId,
	}
	if err = h.dbClient.InsertFeedback(ctx, feedback); err != nil {
		return nil, err
	}

	h.enqueuePipeline(ctx, feedback)

	c.Status(http.StatusCreated)
	return toFeedbackItem(feedback, 0), nil
}

func (h *Handler) vote(c *gin.Context, workspaceSlug, boardSlug, feedbackId string) (interface{}, error) {
	request := &VoteRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	if request.ExternalUserId == "" {
		return nil, cverrors.NewBadRequest("externalUserId is required")
	}
	if len(request.ExternalUserId) > maxExternalIdLength {
		return nil, cverrors.NewBadRequest("externalUserId must be at most 100 characters")
	}

	ctx := c.Request.Context()
	workspace, _, feedback, err := h.resolveFeedback(ctx, workspaceSlug, boardSlug, feedbackId)
	if err != nil {
		return nil, err
	}
	endUser, err := h.resolveEndUser(ctx, workspace.Id, request.ExternalUserId)
	if err != nil {
		return nil, err
	}

	// re-voting hits the unique (feedback_id, voter_id) key and is a no-op
	if err = h.dbClient.UpsertVote(ctx, &dbclient.Vote{
		FeedbackId: feedback.FeedbackId,
		VoterId:    endUser.EndUserId,
		Weight:     1,
	}); err != nil {
		return nil, err
	}
	total, err := h.dbClient.CountVotes(ctx, feedback.FeedbackId)
	if err != nil {
		return nil, err
	}
	return gin.H{"feedback_id": feedback.FeedbackId, "vote_count": total}, nil
}

func (h *Handler) comment(c *gin.Context, workspaceSlug, boardSlug, feedbackId string) (interface{}, error) {
	request := &CommentRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	if request.Content == "" {
		return nil, cverrors.NewBadRequest("content is required")
	}
	if utf8.RuneCountInString(request.Content) > maxDescriptionLength {
		return nil, cverrors.NewBadRequest("content must be at most 4000 characters")
	}

	ctx := c.Request.Context()
	workspace, _, feedback, err := h.resolveFeedback(ctx, workspaceSlug, boardSlug, feedbackId)
	if err != nil {
		return nil, err
	}

	var authorId sql.NullString
	if request.ExternalUserId != "" {
		endUser, err := h.resolveEndUser(ctx, workspace.Id, request.ExternalUserId)
		if err != nil {
			return nil, err
		}
		authorId = sql.NullString{String: endUser.EndUserId, Valid: true}
	}

	// the public surface can never create internal comments
	comment := &dbclient.Comment{
		CommentId:  idgen.New(common.CommentIdPrefix),
		FeedbackId: feedback.FeedbackId,
		AuthorId:   authorId,
		Body:       request.Content,
		IsInternal: false,
	}
	if err = h.dbClient.InsertComment(ctx, comment); err != nil {
		return nil, err
	}

	c.Status(http.StatusCreated)
	return CommentItem{
		Id:         comment.CommentId,
		FeedbackId: comment.FeedbackId,
		Content:    comment.Body,
	}, nil
}

// resolveBoard resolves (and on the write path auto-provisions) the
// workspace and board for a slug pair. Creation races resolve through the
// unique slug keys: the loser re-reads the winner's row.
func (h *Handler) resolveBoard(ctx context.Context, workspaceSlug, boardSlug string, provision bool) (*dbclient.Workspace, *dbclient.Board, error) {
	if err := validateSlug(workspaceSlug); err != nil {
		return nil, nil, err
	}
	if err := validateSlug(boardSlug); err != nil {
		return nil, nil, err
	}

	cacheKey := workspaceSlug + "/" + boardSlug
	if cached, ok := h.cache.Get(cacheKey); ok {
		pair := cached.(*boardPair)
		return pair.workspace, pair.board, nil
	}

	workspace, err := h.dbClient.GetWorkspaceBySlug(ctx, workspaceSlug)
	if err != nil {
		if !provision || !cverrors.IsNotFound(err) {
			return nil, nil, cverrors.NewNotFound("workspace", workspaceSlug)
		}
		if workspace, err = h.dbClient.UpsertWorkspace(ctx, &dbclient.Workspace{
			Slug: workspaceSlug,
			Name: workspaceSlug,
		}); err != nil {
			return nil, nil, err
		}
	}

	board, err := h.dbClient.GetBoard(ctx, workspace.Id, boardSlug)
	if err != nil {
		if !provision || !cverrors.IsNotFound(err) {
			return nil, nil, cverrors.NewNotFound("board", boardSlug)
		}
		if board, err = h.dbClient.UpsertBoard(ctx, &dbclient.Board{
			WorkspaceId:      workspace.Id,
			Slug:             boardSlug,
			Name:             boardSlug,
			ModerationPolicy: dbclient.PolicyAutoApprove,
		}); err != nil {
			return nil, nil, err
		}
	}

	h.cache.SetDefault(cacheKey, &boardPair{workspace: workspace, board: board})
	return workspace, board, nil
}

type boardPair struct {
	workspace *dbclient.Workspace
	board     *dbclient.Board
}

func (h *Handler) resolveFeedback(ctx context.Context, workspaceSlug, boardSlug, feedbackId string) (*dbclient.Workspace, *dbclient.Board, *dbclient.Feedback, error) {
	workspace, board, err := h.resolveBoard(ctx, workspaceSlug, boardSlug, false)
	if err != nil {
		return nil, nil, nil, err
	}
	feedback, err := h.dbClient.GetFeedbackById(ctx, feedbackId)
	if err != nil || feedback.BoardId != board.Id {
		return nil, nil, nil, cverrors.NewNotFound("feedback", feedbackId)
	}
	return workspace, board, feedback, nil
}

func (h *Handler) resolveEndUser(ctx context.Context, workspaceId int64, externalUserId string) (*dbclient.EndUser, error) {
	return h.dbClient.UpsertEndUser(ctx, &dbclient.EndUser{
		EndUserId:      idgen.New(common.EndUserIdPrefix),
		WorkspaceId:    workspaceId,
		ExternalUserId: externalUserId,
	})
}

func (h *Handler) enqueuePipeline(ctx context.Context, feedback *dbclient.Feedback) {
	payload, _ := json.Marshal(taskqueue.PipelinePayload{
		FeedbackId:  feedback.FeedbackId,
		WorkspaceId: feedback.WorkspaceId,
	})
	if _, err := h.queue.Publish(ctx, taskqueue.TopicFullPipeline, payload); err != nil {
		klog.ErrorS(err, "failed to enqueue pipeline task", "feedback", feedback.FeedbackId)
	}
}

func validateSlug(slug string) error {
	if slug == "" || len(slug) > maxSlugLength || !slugPattern.MatchString(slug) {
		return cverrors.NewBadRequest(fmt.Sprintf("invalid slug: %q", slug))
	}
	return nil
}

func toFeedbackItem(feedback *dbclient.Feedback, votes int64) FeedbackItem {
	item := FeedbackItem{
		Id:              feedback.FeedbackId,
		Title:           feedback.Title,
		Description:     feedback.Body.String,
		Status:          feedback.Status,
		ModerationState: feedback.Moderation,
		VoteCount:       votes,
	}
	if feedback.CreateTime.Valid {
		item.CreatedAt = feedback.CreateTime.Time.Format(time.RFC3339)
	}
	return item
}
