package handlers

import (
	"net/http"

	"reward-admin/internal/service"

	"github.com/gin-gonic/gin"
)

type unitRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (r unitRequest) input() service.UnitInput {
	return service.UnitInput{Name: r.Name, Code: r.Code, Description: r.Description}
}

type positionRequest struct {
	Name                string `json:"name" binding:"required"`
	ContributionGroupID *uint  `json:"contribution_group_id"`
}

func (r positionRequest) input() service.PositionInput {
	return service.PositionInput{Name: r.Name, ContributionGroupID: r.ContributionGroupID}
}

type contributionGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

func (r contributionGroupRequest) input() service.ContributionGroupInput {
	return service.ContributionGroupInput{Name: r.Name, Description: r.Description, Weight: r.Weight}
}

//
// Units
//

func (h *Handler) ListUnits(c *gin.Context) {
	units, err := h.Taxonomy.ListUnits(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func (h *Handler) CreateUnit(c *gin.Context) {
	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	u, err := h.Taxonomy.CreateUnit(c.Request.Context(), actor(c), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	u, err := h.Taxonomy.UpdateUnit(c.Request.Context(), actor(c), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Taxonomy.DeleteUnit(c.Request.Context(), actor(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// Positions
//

func (h *Handler) ListPositions(c *gin.Context) {
	positions, err := h.Taxonomy.ListPositions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

func (h *Handler) CreatePosition(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	p, err := h.Taxonomy.CreatePosition(c.Request.Context(), actor(c), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePosition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	p, err := h.Taxonomy.UpdatePosition(c.Request.Context(), actor(c), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePosition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Taxonomy.DeletePosition(c.Request.Context(), actor(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// Contribution groups
//

func (h *Handler) ListContributionGroups(c *gin.Context) {
	groups, err := h.Taxonomy.ListContributionGroups(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) CreateContributionGroup(c *gin.Context) {
	var req contributionGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	g, err := h.Taxonomy.CreateContributionGroup(c.Request.Context(), actor(c), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) UpdateContributionGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req contributionGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	g, err := h.Taxonomy.UpdateContributionGroup(c.Request.Context(), actor(c), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteContributionGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Taxonomy.DeleteContributionGroup(c.Request.Context(), actor(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
