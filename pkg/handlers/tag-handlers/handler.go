/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package taghandlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/idgen"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

const (
	maxTagNameLength = 50
	defaultTagColor  = "#6b7280"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

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

// NewHandler creates the tag handler.
func NewHandler(dbClient *dbclient.Client) *Handler {
	return &Handler{dbClient: dbClient}
}

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color,omitempty"`
}

type PatchTagRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

type TagItem struct {
	TagId     string `json:"tag_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (h *Handler) List(c *gin.Context)   { handle(c, h.list) }
func (h *Handler) Create(c *gin.Context) { handle(c, h.create) }
func (h *Handler) Patch(c *gin.Context)  { handle(c, h.patch) }
func (h *Handler) Delete(c *gin.Context) { handle(c, h.delete) }

func (h *Handler) list(c *gin.Context) (interface{}, error) {
	tags, err := h.dbClient.SelectTags(c.Request.Context(), authority.CurrentWorkspaceId(c))
	if err != nil {
		return nil, err
	}
	items := make([]*TagItem, 0, len(tags))
	for _, tag := range tags {
		items = append(items, toTagItem(tag))
	}
	return gin.H{"items": items}, nil
}

func (h *Handler) create(c *gin.Context) (interface{}, error) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	color := req.Color
	if color == "" {
		color = defaultTagColor
	}
	if !colorPattern.MatchString(color) {
		return nil, cverrors.NewBadRequest("color must be a hex value like #3b82f6")
	}

	tag := &dbclient.Tag{
		TagId:       idgen.New(common.TagIdPrefix),
		WorkspaceId: authority.CurrentWorkspaceId(c),
		Name:        name,
		Color:       color,
	}
	if err := h.dbClient.InsertTag(c.Request.Context(), tag); err != nil {
		return nil, err
	}
	c.Status(http.StatusCreated)
	return toTagItem(tag), nil
}

func (h *Handler) patch(c *gin.Context) (interface{}, error) {
	var req PatchTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, cverrors.NewBadRequest(err.Error())
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		name, err := validateName(*req.Name)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.Color != nil {
		if !colorPattern.MatchString(*req.Color) {
			return nil, cverrors.NewBadRequest("color must be a hex value like #3b82f6")
		}
		fields["color"] = *req.Color
	}
	if len(fields) == 0 {
		return nil, cverrors.NewBadRequest("no fields to update")
	}

	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	tagId := c.Param("tagId")
	if err := h.dbClient.UpdateTagFields(ctx, workspaceId, tagId, fields); err != nil {
		return nil, err
	}
	tag, err := h.dbClient.GetTagById(ctx, workspaceId, tagId)
	if err != nil {
		return nil, err
	}
	return toTagItem(tag), nil
}

func (h *Handler) delete(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	workspaceId := authority.CurrentWorkspaceId(c)
	tagId := c.Param("tagId")
	if _, err := h.dbClient.GetTagById(ctx, workspaceId, tagId); err != nil {
		return nil, err
	}
	if err := h.dbClient.DeleteTag(ctx, workspaceId, tagId); err != nil {
		return nil, err
	}
	return gin.H{"message": "Tag deleted"}, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", cverrors.NewBadRequest("name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxTagNameLength {
		return "", cverrors.NewBadRequest("name must be at most 50 characters")
	}
	return name, nil
}

func toTagItem(tag *dbclient.Tag) *TagItem {
	item := &TagItem{
		TagId: tag.TagId,
		Name:  tag.Name,
		Color: tag.Color,
	}
	if tag.CreateTime.Valid {
		item.CreatedAt = tag.CreateTime.Time.UTC().Format(time.RFC3339)
	}
	return item
}
