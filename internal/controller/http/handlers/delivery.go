package handlers

import (
	"net/http"

	"storefront/internal/domain/auth"
	"storefront/internal/domain/delivery"

	"github.com/gin-gonic/gin"
)

type DeliveryHandler struct {
	service *delivery.Service
}

func NewDeliveryHandler(s *delivery.Service) DeliveryHandler {
	return DeliveryHandler{service: s}
}

func (h *DeliveryHandler) Add(c *gin.Context) {
	var fields delivery.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	info, err := h.service.Add(c.Request.Context(), auth.FromContext(c.Request.Context()), fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "delivery": info})
}

func (h *DeliveryHandler) List(c *gin.Context) {
	infos, err := h.service.List(c.Request.Context(), auth.FromContext(c.Request.Context()))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deliveries": infos})
}

func (h *DeliveryHandler) Update(c *gin.Context) {
	id := c.Param("delivery_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": "delivery_id is required"})
		return
	}

	var fields delivery.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	info, err := h.service.Update(c.Request.Context(), auth.FromContext(c.Request.Context()), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "delivery": info})
}

func (h *DeliveryHandler) Delete(c *gin.Context) {
	id := c.Param("delivery_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": "delivery_id is required"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.FromContext(c.Request.Context()), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Delivery Info Removed"})
}
