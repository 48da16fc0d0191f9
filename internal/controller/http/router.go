// Package http wires the storefront API routes onto a gin engine.
package http

import (
	"storefront/internal/controller/http/handlers"
	"storefront/internal/controller/http/middleware"

	"github.com/gin-gonic/gin"
)

type Router struct {
	order     handlers.OrderHandler
	delivery  handlers.DeliveryHandler
	jwtSecret string
}

func NewRouter(order handlers.OrderHandler, delivery handlers.DeliveryHandler, jwtSecret string) *Router {
	return &Router{
		order:     order,
		delivery:  delivery,
		jwtSecret: jwtSecret,
	}
}

func (r *Router) SetUp(engine *gin.Engine) {
	api := engine.Group("/api", middleware.Auth(r.jwtSecret))

	orders := api.Group("/order")
	orders.POST("/place", r.order.PlaceCOD)
	orders.POST("/stripe", r.order.PlaceHostedCheckout)
	orders.POST("/bankslip", r.order.PlaceBankSlip)
	orders.POST("/verify", r.order.Verify)
	orders.POST("/userorders", r.order.UserOrders)
	orders.GET("/list", r.order.List)
	orders.POST("/status", r.order.SetStatus)
	orders.GET("/:order_id", r.order.Get)
	orders.DELETE("/:order_id", r.order.Delete)
	orders.GET("/:order_id/events", r.order.GetEvents)

	deliveries := api.Group("/delivery")
	deliveries.POST("", r.delivery.Add)
	deliveries.GET("", r.delivery.List)
	deliveries.PUT("/:delivery_id", r.delivery.Update)
	deliveries.DELETE("/:delivery_id", r.delivery.Delete)
}
