package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/orgdirectory/internal/services"
	appErrors "github.com/charlesng35/orgdirectory/pkg/errors"
	"github.com/charlesng35/orgdirectory/pkg/response"
)

// OrganizationHandler serves the organization directory endpoints.
type OrganizationHandler struct {
	svc *services.DirectoryService
}

// NewOrganizationHandler wires a handler around the directory service.
func NewOrganizationHandler(svc *services.DirectoryService) (*OrganizationHandler, error) {
	if svc == nil {
		return nil, errors.New("organization handler: directory service is required")
	}
	return &OrganizationHandler{svc: svc}, nil
}

type pageQuery struct {
	PageNumber *int `form:"pageNumber" validate:"omitempty,gte=1"`
	PageSize   *int `form:"pageSize" validate:"omitempty,gte=1"`
}

type searchQuery struct {
	pageQuery
	Query string `form:"query"`
}

type seedQuery struct {
	Count *int `form:"count" validate:"omitempty,gte=0"`
}

// GET /api/organization/GetList
func (h *OrganizationHandler) GetList(c *gin.Context) {
	var query pageQuery
	if !bindQuery(c, &query) {
		return
	}

	pageNumber, pageSize := h.pagination(query)
	result, err := h.svc.List(requestContext(c), pageNumber, pageSize)
	if err != nil {
		response.Error(c, h.directoryError(err))
		return
	}

	response.Page(c, http.StatusOK, result.Records, result.TotalRecords, result.Elapsed)
}

// GET /api/organization/Search
func (h *OrganizationHandler) Search(c *gin.Context) {
	var query searchQuery
	if !bindQuery(c, &query) {
		return
	}

	pageNumber, pageSize := h.pagination(query.pageQuery)
	result, err := h.svc.Search(requestContext(c), query.Query, pageNumber, pageSize)
	if err != nil {
		response.Error(c, h.directoryError(err))
		return
	}

	response.Page(c, http.StatusOK, result.Records, result.TotalRecords, result.Elapsed)
}

// POST /api/organization/CreateRandomData
func (h *OrganizationHandler) CreateRandomData(c *gin.Context) {
	var query seedQuery
	if !bindQuery(c, &query) {
		return
	}

	count := h.svc.Config().DefaultSeedCount
	if query.Count != nil {
		count = *query.Count
	}

	result, err := h.svc.SeedRandom(requestContext(c), count)
	if err != nil {
		appErr := h.directoryError(err)
		if appErr.Status() == http.StatusBadRequest {
			response.Error(c, appErr)
			return
		}
		response.ErrorWithDuration(c, appErr, result.Elapsed)
		return
	}

	message := fmt.Sprintf("%d records were inserted successfully.", result.Inserted)
	response.MessageWithDuration(c, http.StatusOK, message, result.Elapsed)
}

func (h *OrganizationHandler) pagination(query pageQuery) (int, int) {
	pageNumber := services.DefaultPageNumber
	if query.PageNumber != nil {
		pageNumber = *query.PageNumber
	}
	pageSize := h.svc.Config().DefaultPageSize
	if query.PageSize != nil {
		pageSize = *query.PageSize
	}
	return pageNumber, pageSize
}

// directoryError maps service failures onto client-facing errors.
func (h *OrganizationHandler) directoryError(err error) *appErrors.AppError {
	switch {
	case errors.Is(err, services.ErrEmptySearchQuery):
		return appErrors.NewBadRequest("query is required")
	case errors.Is(err, services.ErrInvalidPagination):
		return appErrors.NewBadRequest("pageNumber and pageSize must be at least 1")
	case errors.Is(err, services.ErrInvalidSeedCount):
		return appErrors.NewBadRequest(fmt.Sprintf("count must be between 0 and %d", h.svc.Config().MaxSeedCount))
	default:
		return appErrors.NewInternal(err)
	}
}

// requestContext returns the request's context so storage calls stop when the client goes away.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
