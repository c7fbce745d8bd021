package handlers

import (
	"errors"
	"net/http"
	"time"

	request "pdv_payments/internal/adapter/http/dto/request"
	response "pdv_payments/internal/adapter/http/dto/response"
	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase"
	"pdv_payments/pkg"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	wsEventBuffer  = 16
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// PaymentOrderHandler exposes the payment order lifecycle to the PDV UI.
type PaymentOrderHandler struct {
	usecase  usecase.IPaymentOrderUseCase
	clock    clockwork.Clock
	log      *logrus.Entry
	upgrader websocket.Upgrader
}

func NewPaymentOrderHandler(uc usecase.IPaymentOrderUseCase, clock clockwork.Clock, log *logrus.Entry) *PaymentOrderHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &PaymentOrderHandler{
		usecase: uc,
		clock:   clock,
		log:     log.WithField("component", "payment_order_handler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The UI is served from another origin on the PDV terminal.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// CreateOrder godoc
// @Summary      Create a payment order
// @Description  Generates a PIX or boleto charge at the configured gateway. The response carries the order even when generation failed.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body      request.CreatePaymentOrderRequest  true  "Order"
// @Success      201    {object}  response.PaymentOrderResponse
// @Failure      400    {object}  pkg.HTTPError
// @Failure      503    {object}  pkg.HTTPError
// @Router       /orders [post]
func (h *PaymentOrderHandler) CreateOrder(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		h.log.WithError(err).Warn("[payment][handler] unreadable body")
		writeError(c, pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest))
		return
	}
	if violations, err := request.ValidateCreatePaymentOrder(raw); err != nil {
		h.log.WithError(err).WithField("violations", violations).Warn("[payment][handler] body rejected by contract")
		writeError(c, pkg.NewDomainError("INVALID_REQUEST", "Invalid request", err, http.StatusBadRequest))
		return
	}

	var payload request.CreatePaymentOrderRequest
	if err := binding.JSON.BindBody(raw, &payload); err != nil {
		writeError(c, pkg.NewDomainError("INVALID_REQUEST", "Invalid request", err, http.StatusBadRequest))
		return
	}

	order, err := h.usecase.CreateOrder(c.Request.Context(), payload.ToInput())
	if err != nil {
		h.log.WithError(err).Warn("[payment][handler] create failed")
		writeError(c, mapPaymentOrderError(err))
		return
	}
	h.log.WithFields(logrus.Fields{"order_id": order.ID, "status": order.Status}).Info("[payment][handler] create done")

	c.JSON(http.StatusCreated, response.FromPaymentOrder(order, h.clock.Now()))
}

// GetOrder godoc
// @Summary  Get a payment order
// @Tags     orders
// @Produce  json
// @Param    id   path      string  true  "Order ID"
// @Success  200  {object}  response.PaymentOrderResponse
// @Failure  404  {object}  pkg.HTTPError
// @Router   /orders/{id} [get]
func (h *PaymentOrderHandler) GetOrder(c *gin.Context) {
	order, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapPaymentOrderError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPaymentOrder(order, h.clock.Now()))
}

// CancelOrder godoc
// @Summary  Cancel a payment order
// @Description  Idempotent. Canceling a terminal order is a no-op.
// @Tags     orders
// @Param    id   path  string  true  "Order ID"
// @Success  204
// @Failure  404  {object}  pkg.HTTPError
// @Router   /orders/{id} [delete]
func (h *PaymentOrderHandler) CancelOrder(c *gin.Context) {
	id := c.Param("id")
	if err := h.usecase.Cancel(c.Request.Context(), id); err != nil {
		writeError(c, mapPaymentOrderError(err))
		return
	}
	h.log.WithField("order_id", id).Info("[payment][handler] cancel done")
	c.Status(http.StatusNoContent)
}

// RegenerateOrder godoc
// @Summary  Regenerate a failed or expired payment order
// @Tags     orders
// @Produce  json
// @Param    id   path      string  true  "Order ID"
// @Success  201  {object}  response.PaymentOrderResponse
// @Failure  404  {object}  pkg.HTTPError
// @Failure  409  {object}  pkg.HTTPError
// @Router   /orders/{id}/regenerate [post]
func (h *PaymentOrderHandler) RegenerateOrder(c *gin.Context) {
	id := c.Param("id")
	order, err := h.usecase.Regenerate(c.Request.Context(), id)
	if err != nil {
		h.log.WithError(err).WithField("order_id", id).Warn("[payment][handler] regenerate failed")
		writeError(c, mapPaymentOrderError(err))
		return
	}
	h.log.WithFields(logrus.Fields{"parent_id": id, "order_id": order.ID, "status": order.Status}).Info("[payment][handler] regenerate done")
	c.JSON(http.StatusCreated, response.FromPaymentOrder(order, h.clock.Now()))
}

// ListAttempts godoc
// @Summary  List every attempt of a payment
// @Description  Returns the original order and its regenerations, oldest first.
// @Tags     orders
// @Produce  json
// @Param    id   path      string  true  "Any order ID of the chain"
// @Success  200  {array}   response.PaymentOrderResponse
// @Failure  404  {object}  pkg.HTTPError
// @Router   /orders/{id}/attempts [get]
func (h *PaymentOrderHandler) ListAttempts(c *gin.Context) {
	orders, err := h.usecase.ListAttempts(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapPaymentOrderError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPaymentOrders(orders, h.clock.Now()))
}

// StreamStatus godoc
// @Summary  Stream status changes of a payment order
// @Description  WebSocket. Sends the current snapshot, then one event per transition, and closes after a terminal status.
// @Tags     orders
// @Param    id   path  string  true  "Order ID"
// @Success  101
// @Failure  404  {object}  pkg.HTTPError
// @Router   /orders/{id}/ws [get]
func (h *PaymentOrderHandler) StreamStatus(c *gin.Context) {
	id := c.Param("id")
	log := h.log.WithField("order_id", id)

	events := make(chan entities.PaymentOrder, wsEventBuffer)
	unsubscribe := h.usecase.Subscribe(func(o entities.PaymentOrder) {
		if o.ID != id {
			return
		}
		select {
		case events <- o:
		default:
			log.WithField("status", o.Status).Warn("[payment][ws] subscriber too slow, event dropped")
		}
	})
	defer unsubscribe()

	current, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, mapPaymentOrderError(err))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("[payment][ws] upgrade failed")
		return
	}
	defer conn.Close()
	log.Info("[payment][ws] client connected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeEvent(conn, current); err != nil {
		return
	}
	if current.Status.Terminal() {
		closeNormally(conn)
		return
	}

	ping := h.clock.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			log.Info("[payment][ws] client disconnected")
			return
		case o := <-events:
			// Events raised before the snapshot was read are already reflected in it.
			if !entities.CanTransition(current.Status, o.Status) {
				continue
			}
			current = o
			if err := h.writeEvent(conn, o); err != nil {
				log.WithError(err).Warn("[payment][ws] write failed")
				return
			}
			if o.Status.Terminal() {
				closeNormally(conn)
				return
			}
		case <-ping.Chan():
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *PaymentOrderHandler) writeEvent(conn *websocket.Conn, o entities.PaymentOrder) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(response.StatusEvent{
		Type:  response.StatusEventType,
		Order: response.FromPaymentOrder(o, h.clock.Now()),
	})
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "order finished")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
}

func writeError(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapPaymentOrderError(err error) *pkg.AppError {
	var detail *entities.ErrorDetail
	switch {
	case errors.Is(err, usecase.ErrInvalidPaymentOrderID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid order id", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentOrderNotFound):
		return pkg.NewDomainErrorSimple("ORDER_NOT_FOUND", "Payment order not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrOrderAlreadyPaid):
		return pkg.NewDomainErrorSimple("ORDER_ALREADY_PAID", "Payment order already paid", http.StatusConflict)
	case errors.Is(err, usecase.ErrOrderNotTerminal):
		return pkg.NewDomainErrorSimple("ORDER_IN_PROGRESS", "Payment order is still in progress", http.StatusConflict)
	case errors.Is(err, usecase.ErrServiceClosed):
		return pkg.NewDomainErrorSimple("SERVICE_UNAVAILABLE", "Service is shutting down", http.StatusServiceUnavailable)
	case errors.As(err, &detail) && detail.Kind == entities.ErrorKindValidationRejected:
		return pkg.NewDomainError("VALIDATION_REJECTED", detail.Message, err, http.StatusBadRequest)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
