package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/collections-backend/internal/http/response"
	"github.com/yungbote/collections-backend/internal/platform/ctxutil"
	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/services"
)

type CollectionHandler struct {
	log *logger.Logger
	svc services.CollectionService
}

func NewCollectionHandler(log *logger.Logger, svc services.CollectionService) *CollectionHandler {
	return &CollectionHandler{log: log.With("handler", "CollectionHandler"), svc: svc}
}

type companiesRequest struct {
	CompanyIDs   []int  `json:"company_ids" binding:"required"`
	CollectionID string `json:"collection_id" binding:"required"`
}

type companyRequest struct {
	CompanyID int `json:"company_id" binding:"required"`
}

type collectionToCollectionRequest struct {
	SourceCollectionID string `json:"source_collection_id" binding:"required"`
	TargetCollectionID string `json:"target_collection_id" binding:"required"`
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return false
	}
	return true
}

// POST /user_actions/add-companies-to-collection
func (h *CollectionHandler) AddCompanies(c *gin.Context) {
	var req companiesRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.AddCompaniesToCollection(c.Request.Context(), req.CollectionID, req.CompanyIDs)
	if err != nil {
		h.fail(c, "add companies failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /user_actions/remove-companies-from-collection
func (h *CollectionHandler) RemoveCompanies(c *gin.Context) {
	var req companiesRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.RemoveCompaniesFromCollection(c.Request.Context(), req.CollectionID, req.CompanyIDs)
	if err != nil {
		h.fail(c, "remove companies failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /user_actions/like-company
func (h *CollectionHandler) LikeCompany(c *gin.Context) {
	var req companyRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.LikeCompany(c.Request.Context(), req.CompanyID)
	if err != nil {
		h.fail(c, "like company failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /user_actions/unlike-company
func (h *CollectionHandler) UnlikeCompany(c *gin.Context) {
	var req companyRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.UnlikeCompany(c.Request.Context(), req.CompanyID)
	if err != nil {
		h.fail(c, "unlike company failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /user_actions/add-collection-to-collection
func (h *CollectionHandler) AddCollection(c *gin.Context) {
	var req collectionToCollectionRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.AddCollectionToCollection(c.Request.Context(), req.SourceCollectionID, req.TargetCollectionID)
	if err != nil {
		h.fail(c, "add collection failed", err)
		return
	}
	response.RespondOK(c, res)
}

func (h *CollectionHandler) fail(c *gin.Context, msg string, err error) {
	fields := append([]interface{}{"error", err}, ctxutil.LogFields(c.Request.Context())...)
	h.log.Warn(msg, fields...)
	response.RespondAPIError(c, err)
}
