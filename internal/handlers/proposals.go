package handlers

import (
	"net/http"

	"reward-admin/internal/models"
	"reward-admin/internal/service"

	"github.com/gin-gonic/gin"
)

type proposalItemRequest struct {
	PersonnelID uint   `json:"personnel_id" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Year        int    `json:"year" binding:"required"`
	Note        string `json:"note"`
}

type submitProposalRequest struct {
	Title string                `json:"title"`
	Items []proposalItemRequest `json:"items" binding:"required,min=1,dive"`
}

type rejectProposalRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

func (h *Handler) ListProposals(c *gin.Context) {
	f := service.ProposalFilter{
		Status: models.ProposalStatus(c.Query("status")),
		UnitID: queryUint(c, "unit_id"),
		Page:   pageFrom(c),
	}
	proposals, total, err := h.Proposals.List(c.Request.Context(), actor(c), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(proposals, total, f.Page))
}

func (h *Handler) GetProposal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.Proposals.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) SubmitProposal(c *gin.Context) {
	var req submitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "items must list personnel_id, type and year")
		return
	}

	in := service.SubmitProposalInput{Title: req.Title}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.ProposalItemInput{
			PersonnelID: it.PersonnelID,
			Type:        it.Type,
			Year:        it.Year,
			Note:        it.Note,
		})
	}

	p, err := h.Proposals.Submit(c.Request.Context(), actor(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ApproveProposal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.Proposals.Approve(c.Request.Context(), id, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RejectProposal leaves reason validation to the service so a short or
// missing reason is reported like any other validation error.
func (h *Handler) RejectProposal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req rejectProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Proposals.Reject(c.Request.Context(), id, actor(c), req.RejectionReason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
