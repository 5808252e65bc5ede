package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type IPWhitelistHandler struct {
	whitelistService service.IPWhitelistService
	auditService     service.AuditService
}

func NewIPWhitelistHandler(whitelistService service.IPWhitelistService, auditService service.AuditService) *IPWhitelistHandler {
	return &IPWhitelistHandler{whitelistService: whitelistService, auditService: auditService}
}

// recordAudit logs a whitelist mutation attributed to the admin resolved by
// the auth middleware.
func (h *IPWhitelistHandler) recordAudit(c *gin.Context, action string, entryID uint, network, details string) {
	var actorID *uint
	if user, ok := middleware.CurrentUser(c); ok {
		actorID = &user.ID
	}
	h.auditService.Record(c.Request.Context(), actorID, action, strconv.FormatUint(uint64(entryID), 10), network, details)
}

// RegisterRoutes binds the whitelist endpoints. All of them are admin-only.
func (h *IPWhitelistHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/whitelist")
	group.Use(middleware.RequireRole(model.RoleAdmin))
	{
		group.POST("/ip-whitelist", h.Add)
		group.GET("/ip-whitelist", h.List)
		group.GET("/ip-whitelist/:id", h.Get)
		group.PUT("/ip-whitelist/:id", h.Update)
		group.DELETE("/ip-whitelist/:id", h.Delete)
	}
}

// Add handles POST /whitelist/ip-whitelist
// @Summary      Add IP network to whitelist
// @Description  Adds a CIDR range to the trust registry. The network is normalized to its canonical form before storing.
// @Tags         whitelist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateWhitelistRequest  true  "Whitelist Entry"
// @Success      201      {object}  response.Response{data=model.IPWhitelistEntry}
// @Failure      400      {object}  response.Response
// @Router       /whitelist/ip-whitelist [post]
func (h *IPWhitelistHandler) Add(c *gin.Context) {
	var req service.CreateWhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.whitelistService.Add(c.Request.Context(), req)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	h.recordAudit(c, model.ActionAddWhitelist, entry.ID, entry.IPNetwork, "org="+entry.OrganizationName)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// List handles GET /whitelist/ip-whitelist
// @Summary      List whitelist entries
// @Tags         whitelist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.IPWhitelistEntry}
// @Router       /whitelist/ip-whitelist [get]
func (h *IPWhitelistHandler) List(c *gin.Context) {
	entries, err := h.whitelistService.List(c.Request.Context())
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// Get handles GET /whitelist/ip-whitelist/:id
// @Summary      Get whitelist entry
// @Tags         whitelist
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Entry ID"
// @Success      200  {object}  response.Response{data=model.IPWhitelistEntry}
// @Failure      404  {object}  response.Response
// @Router       /whitelist/ip-whitelist/{id} [get]
func (h *IPWhitelistHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	entry, err := h.whitelistService.Get(c.Request.Context(), id)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// Update handles PUT /whitelist/ip-whitelist/:id
// @Summary      Update whitelist entry
// @Description  Updates the network and/or organization label. A supplied network is re-normalized.
// @Tags         whitelist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                               true  "Entry ID"
// @Param        payload  body      service.UpdateWhitelistRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=model.IPWhitelistEntry}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /whitelist/ip-whitelist/{id} [put]
func (h *IPWhitelistHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateWhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	entry, err := h.whitelistService.Update(c.Request.Context(), id, req)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	h.recordAudit(c, model.ActionUpdateWhitelist, entry.ID, entry.IPNetwork, "org="+entry.OrganizationName)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// Delete handles DELETE /whitelist/ip-whitelist/:id
// @Summary      Delete whitelist entry
// @Tags         whitelist
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Entry ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /whitelist/ip-whitelist/{id} [delete]
func (h *IPWhitelistHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// Resolve the entry first so the audit record carries the removed network.
	entry, err := h.whitelistService.Get(c.Request.Context(), id)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	if err := h.whitelistService.Delete(c.Request.Context(), id); err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	h.recordAudit(c, model.ActionDeleteWhitelist, entry.ID, entry.IPNetwork, "org="+entry.OrganizationName)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Entry deleted"}))
}

// parseIDParam reads the :id path parameter, answering 400 on garbage input.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id parameter"))
		return 0, false
	}
	return uint(id), true
}
