package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type JournalHandler struct {
	journalService service.JournalService
}

func NewJournalHandler(journalService service.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

// RegisterRoutes binds the journal endpoints: reads require the user role,
// writes require admin.
func (h *JournalHandler) RegisterRoutes(router *gin.RouterGroup) {
	journals := router.Group("/journals")
	{
		journals.GET("", middleware.RequireRole(model.RoleUser), h.ListJournals)
		journals.GET("/:id", middleware.RequireRole(model.RoleUser), h.GetJournal)
		journals.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateJournal)
		journals.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateJournal)
		journals.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteJournal)
	}
}

// ListJournals handles GET /journals
// @Summary      List journals
// @Tags         journals
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /journals [get]
func (h *JournalHandler) ListJournals(c *gin.Context) {
	params := pagination.Parse(c)

	journals, total, err := h.journalService.ListJournals(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"journals": journals,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetJournal handles GET /journals/:id
// @Summary      Get journal by ID
// @Tags         journals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Journal ID"
// @Success      200  {object}  response.Response{data=model.Journal}
// @Failure      404  {object}  response.Response
// @Router       /journals/{id} [get]
func (h *JournalHandler) GetJournal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	journal, err := h.journalService.GetJournal(c.Request.Context(), id)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, journal))
}

// CreateJournal handles POST /journals (admin)
// @Summary      Create journal
// @Tags         journals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateJournalRequest  true  "Journal Payload"
// @Success      201      {object}  response.Response{data=model.Journal}
// @Failure      400      {object}  response.Response
// @Router       /journals [post]
func (h *JournalHandler) CreateJournal(c *gin.Context) {
	var req service.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	journal, err := h.journalService.CreateJournal(c.Request.Context(), req)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, journal))
}

// UpdateJournal handles PUT /journals/:id (admin)
// @Summary      Update journal
// @Tags         journals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                           true  "Journal ID"
// @Param        payload  body      service.UpdateJournalRequest  true  "Journal Payload"
// @Success      200      {object}  response.Response{data=model.Journal}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /journals/{id} [put]
func (h *JournalHandler) UpdateJournal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	journal, err := h.journalService.UpdateJournal(c.Request.Context(), id, req)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, journal))
}

// DeleteJournal handles DELETE /journals/:id (admin)
// @Summary      Delete journal
// @Tags         journals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Journal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /journals/{id} [delete]
func (h *JournalHandler) DeleteJournal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.journalService.DeleteJournal(c.Request.Context(), id); err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Journal deleted successfully"))
}
