package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/controller/apperror"
	"storefront/internal/domain/auth"
	"storefront/internal/domain/order"
	"storefront/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// maxSlipSize caps bank slip uploads at 8 MiB.
const maxSlipSize = 8 << 20

type OrderHandler struct {
	service *order.Service
}

func NewOrderHandler(s *order.Service) OrderHandler {
	return OrderHandler{service: s}
}

type placeOrderBody struct {
	Items   []order.Item  `json:"items"`
	Amount  float64       `json:"amount"`
	Address order.Address `json:"address"`
}

type placedResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message"`
}

// PlaceCOD handles cash-on-delivery checkout.
func (h *OrderHandler) PlaceCOD(c *gin.Context) {
	var body placeOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	result, err := h.service.PlaceOrder(c.Request.Context(), auth.FromContext(c.Request.Context()), order.PlaceOrderRequest{
		Method:  order.MethodCOD,
		Items:   body.Items,
		Amount:  body.Amount,
		Address: body.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.OrdersPlacedTotal.WithLabelValues(string(order.MethodCOD)).Inc()
	c.JSON(http.StatusOK, placedResponse{Success: true, OrderID: result.OrderID, Message: "Order Placed"})
}

// PlaceHostedCheckout creates the order and a provider checkout
// session, returning the redirect URL.
func (h *OrderHandler) PlaceHostedCheckout(c *gin.Context) {
	var body placeOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	result, err := h.service.PlaceOrder(c.Request.Context(), auth.FromContext(c.Request.Context()), order.PlaceOrderRequest{
		Method:  order.MethodHostedCheckout,
		Items:   body.Items,
		Amount:  body.Amount,
		Address: body.Address,
		Origin:  c.GetHeader("Origin"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.OrdersPlacedTotal.WithLabelValues(string(order.MethodHostedCheckout)).Inc()
	c.JSON(http.StatusOK, placedResponse{Success: true, OrderID: result.OrderID, URL: result.RedirectURL, Message: "Session Created"})
}

// PlaceBankSlip handles the multipart slip channel: the order payload
// travels in form fields, the slip image in the `slip` file part.
func (h *OrderHandler) PlaceBankSlip(c *gin.Context) {
	var body placeOrderBody
	if raw := c.PostForm("order"); raw != "" {
		if err := bindJSONString(raw, &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
			return
		}
	}

	slip, err := readSlip(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	result, err := h.service.PlaceOrder(c.Request.Context(), auth.FromContext(c.Request.Context()), order.PlaceOrderRequest{
		Method:  order.MethodBankSlip,
		Items:   body.Items,
		Amount:  body.Amount,
		Address: body.Address,
		Slip:    slip,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.OrdersPlacedTotal.WithLabelValues(string(order.MethodBankSlip)).Inc()
	c.JSON(http.StatusOK, placedResponse{Success: true, OrderID: result.OrderID, Message: "Order Placed"})
}

type verifyBody struct {
	OrderID string `json:"orderId" binding:"required"`
	Success string `json:"success" binding:"required"`
}

// Verify reconciles a hosted checkout outcome reported by the client
// after the provider redirect.
func (h *OrderHandler) Verify(c *gin.Context) {
	var body verifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	confirmed := body.Success == "true"
	err := h.service.Reconcile(c.Request.Context(), auth.FromContext(c.Request.Context()), body.OrderID, confirmed)
	if err != nil {
		respondError(c, err)
		return
	}

	outcome := "declined"
	status := order.StatusNotPaid
	if confirmed {
		outcome = "confirmed"
		status = order.StatusPaid
	}
	metrics.ReconciliationsTotal.WithLabelValues(outcome).Inc()
	c.JSON(http.StatusOK, gin.H{"success": confirmed, "status": string(status)})
}

// UserOrders lists the caller's own orders.
func (h *OrderHandler) UserOrders(c *gin.Context) {
	orders, err := h.service.UserOrders(c.Request.Context(), auth.FromContext(c.Request.Context()))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// Get returns a single order to its owner or an admin.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": "order_id is required"})
		return
	}

	o, err := h.service.GetOrder(c.Request.Context(), auth.FromContext(c.Request.Context()), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

type listParams struct {
	Methods    string `form:"method" binding:"omitempty"`
	Payment    *bool  `form:"payment" binding:"omitempty"`
	Search     string `form:"search" binding:"omitempty"`
	From       string `form:"from" binding:"omitempty"`
	To         string `form:"to" binding:"omitempty"`
	PageSize   int    `form:"limit" binding:"omitempty,min=0"`
	PageNumber int    `form:"page" binding:"omitempty,min=0"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=created_at amount"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// List is the admin order listing with filters and pagination.
func (h *OrderHandler) List(c *gin.Context) {
	query, err := h.createQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	orders, err := h.service.ListOrders(c.Request.Context(), auth.FromContext(c.Request.Context()), *query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

type setStatusBody struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// SetStatus is the admin status update.
func (h *OrderHandler) SetStatus(c *gin.Context) {
	var body setStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	status, err := order.NewStatus(body.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": err.Error()})
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), auth.FromContext(c.Request.Context()), body.OrderID, status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status Updated"})
}

// Delete removes an order. Deleting an absent order succeeds.
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": "order_id is required"})
		return
	}

	if err := h.service.DeleteOrder(c.Request.Context(), auth.FromContext(c.Request.Context()), orderID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order Removed"})
}

// GetEvents returns the order's audit trail.
func (h *OrderHandler) GetEvents(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_input", "message": "order_id is required"})
		return
	}

	events, err := h.service.OrderEvents(c.Request.Context(), auth.FromContext(c.Request.Context()), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *OrderHandler) createQuery(c *gin.Context) (*order.OrdersQuery, error) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	builder := order.NewOrdersQueryBuilder()

	if params.Methods != "" {
		parts := strings.Split(params.Methods, ",")
		methods := make([]order.PaymentMethod, len(parts))
		for i, v := range parts {
			m, err := order.NewPaymentMethod(v)
			if err != nil {
				return nil, err
			}
			methods[i] = m
		}
		builder = builder.WithMethods(methods...)
	}

	if params.Payment != nil {
		builder = builder.WithPayment(*params.Payment)
	}
	if params.Search != "" {
		builder = builder.WithSearch(params.Search)
	}

	from, to, err := parseDateRange(params.From, params.To)
	if err != nil {
		return nil, err
	}
	if from != nil || to != nil {
		builder = builder.WithDateRange(from, to)
	}

	if params.PageSize == 0 {
		params.PageSize = 10
	}
	if params.PageNumber == 0 {
		params.PageNumber = 1
	}
	if params.SortBy == "" {
		params.SortBy = "created_at"
	}
	if params.SortOrder == "" {
		params.SortOrder = "desc"
	}

	query, err := builder.
		WithPagination(order.Pagination{PageSize: params.PageSize, PageNumber: params.PageNumber}).
		WithSort(params.SortBy, params.SortOrder).
		Build()
	if err != nil {
		return nil, fmt.Errorf("invalid filter params: %w", err)
	}

	return query, nil
}

func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var fromT, toT *time.Time
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date: %w", err)
		}
		fromT = &t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date: %w", err)
		}
		toT = &t
	}
	return fromT, toT, nil
}

func readSlip(c *gin.Context) (*order.SlipUpload, error) {
	header, err := c.FormFile("slip")
	if err != nil {
		// Missing attachment is a domain validation concern.
		return nil, nil
	}
	if header.Size > maxSlipSize {
		return nil, fmt.Errorf("slip exceeds %d bytes", maxSlipSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open slip: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSlipSize))
	if err != nil {
		return nil, fmt.Errorf("read slip: %w", err)
	}

	return &order.SlipUpload{Filename: header.Filename, Data: data}, nil
}

func bindJSONString(raw string, out any) error {
	return json.Unmarshal([]byte(raw), out)
}

func respondError(c *gin.Context, err error) {
	code := apperror.Code(err)

	var status int
	switch {
	case errors.Is(err, apperror.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrAdapterFailure):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"code": code, "message": err.Error()})
}
