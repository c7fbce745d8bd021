package routes

import (
	"pdv_payments/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathOrders = "/orders"
)

func addOrderRoutes(rg *gin.RouterGroup, h *handlers.PaymentOrderHandler) {
	orders := rg.Group(PathOrders)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.DELETE("/:id", h.CancelOrder)
		orders.POST("/:id/regenerate", h.RegenerateOrder)
		orders.GET("/:id/attempts", h.ListAttempts)
		orders.GET("/:id/ws", h.StreamStatus)
	}
}
