package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	response "pdv_payments/internal/adapter/http/dto/response"
	"pdv_payments/internal/adapter/http/handlers/mocks"
	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/logging"
	"pdv_payments/internal/usecase"
	"pdv_payments/pkg"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"go.uber.org/mock/gomock"
)

var handlerNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

const createBody = `{
  "amount_minor_units": 1000,
  "method": "pix",
  "customer": {
    "name": "Maria Silva",
    "email": "maria@example.com",
    "document": "12345678909",
    "document_type": "individual",
    "address": {"street": "Rua A", "number": "10", "city": "Sao Paulo", "state": "SP", "zip_code": "01001000"}
  },
  "line_items": [{"description": "Cafe", "amount_minor_units": 500, "quantity": 2}]
}`

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockIPaymentOrderUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIPaymentOrderUseCase(ctrl)
	h := NewPaymentOrderHandler(uc, clockwork.NewFakeClockAt(handlerNow), logging.Discard())

	r := gin.New()
	r.POST("/v1/orders", h.CreateOrder)
	r.GET("/v1/orders/:id", h.GetOrder)
	r.DELETE("/v1/orders/:id", h.CancelOrder)
	r.POST("/v1/orders/:id/regenerate", h.RegenerateOrder)
	r.GET("/v1/orders/:id/attempts", h.ListAttempts)
	r.GET("/v1/orders/:id/ws", h.StreamStatus)
	return r, uc
}

func waitingOrder(id string) entities.PaymentOrder {
	return entities.PaymentOrder{
		ID:               id,
		Provider:         "pagarme",
		Method:           entities.PaymentMethodPix,
		Status:           entities.OrderStatusWaiting,
		AmountMinorUnits: 1000,
		QRPayload:        "000201",
		CreatedAt:        handlerNow,
		UpdatedAt:        handlerNow,
		ExpiresAt:        handlerNow.Add(30 * time.Minute),
	}
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkg.HTTPError {
	t.Helper()
	var body pkg.HTTPError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestPaymentOrderHandler_CreateOrder(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doRequest(r, http.MethodPost, "/v1/orders", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("contract violation never reaches the use case", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doRequest(r, http.MethodPost, "/v1/orders", `{"amount_minor_units": 1000, "method": "card"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if got := decodeError(t, w).Code; got != "INVALID_REQUEST" {
			t.Fatalf("expected INVALID_REQUEST, got %s", got)
		}
	})

	t.Run("validation rejected by use case", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			Return(entities.PaymentOrder{}, entities.Wrap(entities.ErrorKindValidationRejected, usecase.ErrLineItemsTotalMismatch, false))

		w := doRequest(r, http.MethodPost, "/v1/orders", createBody)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		body := decodeError(t, w)
		if body.Code != "VALIDATION_REJECTED" || !strings.Contains(body.Message, "line items") {
			t.Fatalf("unexpected error body: %+v", body)
		}
	})

	t.Run("service closed", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(entities.PaymentOrder{}, usecase.ErrServiceClosed)

		w := doRequest(r, http.MethodPost, "/v1/orders", createBody)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in usecase.CreateOrderInput) (entities.PaymentOrder, error) {
				if in.AmountMinorUnits != 1000 || in.Method != entities.PaymentMethodPix || len(in.LineItems) != 1 {
					t.Errorf("unexpected input: %+v", in)
				}
				return waitingOrder("ord-1"), nil
			})

		w := doRequest(r, http.MethodPost, "/v1/orders", createBody)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
		var res response.PaymentOrderResponse
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("invalid json response: %v", err)
		}
		if res.ID != "ord-1" || res.Status != "waiting" || res.RemainingSeconds != 1800 || res.Amount != "10.00" {
			t.Fatalf("unexpected response: %+v", res)
		}
	})

	t.Run("failed generation is still created", func(t *testing.T) {
		r, uc := newTestRouter(t)
		failed := waitingOrder("ord-1")
		failed.Status = entities.OrderStatusFailed
		failed.QRPayload = ""
		failed.LastError = entities.NewErrorDetail(entities.ErrorKindGatewayInternalError, "gateway returned 500", true).WithCode("500")
		uc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(failed, nil)

		w := doRequest(r, http.MethodPost, "/v1/orders", createBody)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var res response.PaymentOrderResponse
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if res.LastError == nil || res.LastError.Kind != "gateway_internal_error" || !res.LastError.Retryable {
			t.Fatalf("expected retryable gateway error, got %+v", res.LastError)
		}
	})
}

func TestPaymentOrderHandler_GetOrder(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().GetByID(gomock.Any(), "nope").Return(entities.PaymentOrder{}, usecase.ErrPaymentOrderNotFound)

		w := doRequest(r, http.MethodGet, "/v1/orders/nope", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("internal error", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().GetByID(gomock.Any(), "ord-1").Return(entities.PaymentOrder{}, fmt.Errorf("dynamodb down"))

		w := doRequest(r, http.MethodGet, "/v1/orders/ord-1", "")
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "dynamodb") {
			t.Fatalf("internal error leaked: %s", w.Body.String())
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().GetByID(gomock.Any(), "ord-1").Return(waitingOrder("ord-1"), nil)

		w := doRequest(r, http.MethodGet, "/v1/orders/ord-1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestPaymentOrderHandler_CancelOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Cancel(gomock.Any(), "ord-1").Return(nil)

		w := doRequest(r, http.MethodDelete, "/v1/orders/ord-1", "")
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Cancel(gomock.Any(), "nope").Return(usecase.ErrPaymentOrderNotFound)

		w := doRequest(r, http.MethodDelete, "/v1/orders/nope", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestPaymentOrderHandler_RegenerateOrder(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"already paid", usecase.ErrOrderAlreadyPaid, http.StatusConflict, "ORDER_ALREADY_PAID"},
		{"still waiting", usecase.ErrOrderNotTerminal, http.StatusConflict, "ORDER_IN_PROGRESS"},
		{"not found", usecase.ErrPaymentOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, uc := newTestRouter(t)
			uc.EXPECT().Regenerate(gomock.Any(), "ord-1").Return(entities.PaymentOrder{}, tc.err)

			w := doRequest(r, http.MethodPost, "/v1/orders/ord-1/regenerate", "")
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}
			if got := decodeError(t, w).Code; got != tc.wantBody {
				t.Fatalf("expected %s, got %s", tc.wantBody, got)
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		r, uc := newTestRouter(t)
		child := waitingOrder("ord-2")
		child.ParentID = "ord-1"
		child.RetryCount = 1
		uc.EXPECT().Regenerate(gomock.Any(), "ord-1").Return(child, nil)

		w := doRequest(r, http.MethodPost, "/v1/orders/ord-1/regenerate", "")
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var res response.PaymentOrderResponse
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if res.ParentID != "ord-1" || res.RetryCount != 1 {
			t.Fatalf("unexpected response: %+v", res)
		}
	})
}

func TestPaymentOrderHandler_ListAttempts(t *testing.T) {
	r, uc := newTestRouter(t)
	first := waitingOrder("ord-1")
	first.Status = entities.OrderStatusExpired
	second := waitingOrder("ord-2")
	second.ParentID, second.RetryCount = "ord-1", 1
	uc.EXPECT().ListAttempts(gomock.Any(), "ord-2").Return([]entities.PaymentOrder{first, second}, nil)

	w := doRequest(r, http.MethodGet, "/v1/orders/ord-2/attempts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res []response.PaymentOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(res) != 2 || res[0].ID != "ord-1" || res[1].RetryCount != 1 {
		t.Fatalf("unexpected attempts: %+v", res)
	}
}

func TestPaymentOrderHandler_StreamStatus(t *testing.T) {
	t.Run("unknown order is rejected before upgrade", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Subscribe(gomock.Any()).Return(func() {})
		uc.EXPECT().GetByID(gomock.Any(), "nope").Return(entities.PaymentOrder{}, usecase.ErrPaymentOrderNotFound)

		w := doRequest(r, http.MethodGet, "/v1/orders/nope/ws", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("pushes snapshot then transitions and closes on terminal", func(t *testing.T) {
		r, uc := newTestRouter(t)

		listeners := make(chan func(entities.PaymentOrder), 1)
		unsubscribed := make(chan struct{})
		uc.EXPECT().Subscribe(gomock.Any()).
			DoAndReturn(func(l func(entities.PaymentOrder)) func() {
				listeners <- l
				return func() { close(unsubscribed) }
			})
		uc.EXPECT().GetByID(gomock.Any(), "ord-1").Return(waitingOrder("ord-1"), nil)

		srv := httptest.NewServer(r)
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/orders/ord-1/ws"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		defer conn.Close()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

		var ev response.StatusEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read snapshot: %v", err)
		}
		if ev.Type != response.StatusEventType || ev.Order.Status != "waiting" {
			t.Fatalf("unexpected snapshot: %+v", ev)
		}

		listener := <-listeners
		other := waitingOrder("ord-9")
		other.Status = entities.OrderStatusPaid
		listener(other)

		paid := waitingOrder("ord-1")
		paid.Status = entities.OrderStatusPaid
		paidAt := handlerNow.Add(time.Minute)
		paid.PaidAt = &paidAt
		listener(paid)

		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read transition: %v", err)
		}
		if ev.Order.ID != "ord-1" || ev.Order.Status != "paid" {
			t.Fatalf("unexpected event: %+v", ev)
		}

		_, _, err = conn.ReadMessage()
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			t.Fatalf("expected normal close, got %v", err)
		}

		select {
		case <-unsubscribed:
		case <-time.After(5 * time.Second):
			t.Fatalf("listener was not removed")
		}
	})

	t.Run("terminal snapshot closes immediately", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Subscribe(gomock.Any()).Return(func() {})
		expired := waitingOrder("ord-1")
		expired.Status = entities.OrderStatusExpired
		uc.EXPECT().GetByID(gomock.Any(), "ord-1").Return(expired, nil)

		srv := httptest.NewServer(r)
		defer srv.Close()

		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/orders/ord-1/ws", nil)
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		defer conn.Close()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

		var ev response.StatusEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read snapshot: %v", err)
		}
		if ev.Order.Status != "expired" || ev.Order.RemainingSeconds != 0 {
			t.Fatalf("unexpected snapshot: %+v", ev)
		}
		if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			t.Fatalf("expected normal close, got %v", err)
		}
	})
}
