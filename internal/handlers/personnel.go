package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"reward-admin/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout = "2006-01-02"
	xlsxType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type personnelRequest struct {
	NationalID     string `json:"national_id" binding:"required"`
	FullName       string `json:"full_name" binding:"required"`
	BirthDate      string `json:"birth_date" binding:"required"`
	EnlistmentDate string `json:"enlistment_date" binding:"required"`
	UnitID         uint   `json:"unit_id" binding:"required"`
	PositionID     uint   `json:"position_id" binding:"required"`
}

func (r personnelRequest) input() (service.PersonnelInput, error) {
	birth, err := time.Parse(dateLayout, r.BirthDate)
	if err != nil {
		return service.PersonnelInput{}, errors.New("birth_date must be YYYY-MM-DD")
	}
	enlisted, err := time.Parse(dateLayout, r.EnlistmentDate)
	if err != nil {
		return service.PersonnelInput{}, errors.New("enlistment_date must be YYYY-MM-DD")
	}
	return service.PersonnelInput{
		NationalID:     r.NationalID,
		FullName:       r.FullName,
		BirthDate:      birth,
		EnlistmentDate: enlisted,
		UnitID:         r.UnitID,
		PositionID:     r.PositionID,
	}, nil
}

func (h *Handler) bindPersonnel(c *gin.Context) (service.PersonnelInput, bool) {
	var req personnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "national_id, full_name, birth_date, enlistment_date, unit_id and position_id are required")
		return service.PersonnelInput{}, false
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err.Error())
		return service.PersonnelInput{}, false
	}
	return in, true
}

func (h *Handler) ListPersonnel(c *gin.Context) {
	f := service.PersonnelFilter{
		UnitID: queryUint(c, "unit_id"),
		Search: c.Query("q"),
		Page:   pageFrom(c),
	}
	people, total, err := h.Personnel.List(c.Request.Context(), actor(c), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(people, total, f.Page))
}

func (h *Handler) GetPersonnel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.Personnel.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePersonnel(c *gin.Context) {
	in, ok := h.bindPersonnel(c)
	if !ok {
		return
	}
	p, err := h.Personnel.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePersonnel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	in, ok := h.bindPersonnel(c)
	if !ok {
		return
	}
	p, err := h.Personnel.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePersonnel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Personnel.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportPersonnel streams the visible personnel list as an .xlsx workbook.
func (h *Handler) ExportPersonnel(c *gin.Context) {
	people, err := h.Personnel.All(c.Request.Context(), actor(c), queryUint(c, "unit_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	// buffered so a rendering failure can still produce a JSON error
	var buf bytes.Buffer
	if err := service.WritePersonnelWorkbook(&buf, people); err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("quan-nhan-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}
