package controller

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func orderPath(user *model.User, suffix string) string {
	return "/api/orders/user/" + user.ID.String() + suffix
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	product, err := e.productRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return product.StockQuantity
}

func TestOrderController_Checkout(t *testing.T) {
	e := setupControllerTest(t)
	user := e.seedUser(t, "checkout@example.com", "")
	product := e.seedProduct(t, "BOOK", "12.50", 5)

	w := e.do(t, http.MethodPost, orderPath(user, "/checkout"), nil, user)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, apperrors.CartEmpty, decodeError(t, w).Error)

	w = e.do(t, http.MethodPost, cartPath(user, "/items"), map[string]interface{}{
		"productId": product.ID, "quantity": 2,
	}, user)
	requireStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodPost, orderPath(user, "/checkout"), map[string]interface{}{
		"shippingAddress": "1 Main St",
		"shippingCost":    "4.00",
	}, user)
	requireStatus(t, w, http.StatusCreated)

	var order model.OrderDetail
	decodeBody(t, w, &order)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, order.OrderNumber)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("25.00").Equal(order.Subtotal))
	assert.True(t, decimal.RequireFromString("29.00").Equal(order.Total))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "BOOK", order.Items[0].ProductSKU)
	assert.Equal(t, 3, e.stockOf(t, product.ID))

	w = e.do(t, http.MethodGet, cartPath(user, ""), nil, user)
	requireStatus(t, w, http.StatusOK)
	var cart model.CartView
	decodeBody(t, w, &cart)
	assert.Empty(t, cart.Items)
}

func TestOrderController_PlaceDirect(t *testing.T) {
	e := setupControllerTest(t)
	user := e.seedUser(t, "direct@example.com", "")
	product := e.seedProduct(t, "CUP", "3.00", 2)

	w := e.do(t, http.MethodPost, orderPath(user, ""), map[string]interface{}{
		"items": []map[string]interface{}{{"productId": product.ID, "quantity": 3}},
	}, user)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, apperrors.InsufficientStock, decodeError(t, w).Error)
	assert.Equal(t, 2, e.stockOf(t, product.ID))

	w = e.do(t, http.MethodPost, orderPath(user, ""), map[string]interface{}{
		"items": []map[string]interface{}{},
	}, user)
	requireStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodPost, orderPath(user, ""), map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": product.ID, "quantity": 1},
			{"productId": product.ID, "quantity": 1},
		},
	}, user)
	requireStatus(t, w, http.StatusCreated)
	var order model.OrderDetail
	decodeBody(t, w, &order)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 0, e.stockOf(t, product.ID))
}

func TestOrderController_ReadAndCancel(t *testing.T) {
	e := setupControllerTest(t)
	owner := e.seedUser(t, "owner@example.com", "")
	other := e.seedUser(t, "other@example.com", "")
	product := e.seedProduct(t, "LAMP", "20.00", 4)

	w := e.do(t, http.MethodPost, orderPath(owner, ""), map[string]interface{}{
		"items": []map[string]interface{}{{"productId": product.ID, "quantity": 2}},
	}, owner)
	requireStatus(t, w, http.StatusCreated)
	var order model.OrderDetail
	decodeBody(t, w, &order)
	orderURL := "/api/orders/" + order.ID.String()

	w = e.do(t, http.MethodGet, orderPath(owner, ""), nil, owner)
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Orders []model.CustomerOrder `json:"orders"`
		Count  int                   `json:"count"`
	}
	decodeBody(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = e.do(t, http.MethodGet, orderPath(owner, ""), nil, other)
	requireStatus(t, w, http.StatusForbidden)
	w = e.do(t, http.MethodGet, orderURL, nil, other)
	requireStatus(t, w, http.StatusForbidden)
	w = e.do(t, http.MethodGet, orderURL, nil, owner)
	requireStatus(t, w, http.StatusOK)
	w = e.do(t, http.MethodGet, "/api/orders/"+uuid.NewString(), nil, owner)
	requireStatus(t, w, http.StatusNotFound)

	w = e.do(t, http.MethodPost, orderURL+"/cancel?restock=true", nil, other)
	requireStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodPost, orderURL+"/cancel?restock=true", nil, owner)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &order)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)
	assert.Equal(t, 4, e.stockOf(t, product.ID))

	w = e.do(t, http.MethodPost, orderURL+"/cancel", nil, owner)
	requireStatus(t, w, http.StatusConflict)
	assert.Equal(t, apperrors.OrderInvalidTransition, decodeError(t, w).Error)

	w = e.do(t, http.MethodPost, orderURL+"/cancel?restock=maybe", nil, owner)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestOrderController_AdminWorkflowAndExport(t *testing.T) {
	e := setupControllerTest(t)
	admin := e.seedUser(t, "admin@example.com", model.RoleAdmin)
	buyer := e.seedUser(t, "buyer@example.com", "")
	product := e.seedProduct(t, "DESK", "150.00", 2)

	w := e.do(t, http.MethodPost, orderPath(buyer, ""), map[string]interface{}{
		"items": []map[string]interface{}{{"productId": product.ID, "quantity": 1}},
	}, buyer)
	requireStatus(t, w, http.StatusCreated)
	var order model.OrderDetail
	decodeBody(t, w, &order)
	orderURL := "/api/orders/" + order.ID.String()

	w = e.do(t, http.MethodPut, orderURL+"/status", map[string]string{"status": "confirmed"}, buyer)
	requireStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodPut, orderURL+"/status", map[string]string{"status": "delivered"}, admin)
	requireStatus(t, w, http.StatusConflict)

	w = e.do(t, http.MethodPut, orderURL+"/status", map[string]string{"status": "lost"}, admin)
	requireStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodPut, orderURL+"/status", map[string]string{"status": "confirmed"}, admin)
	requireStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodPut, orderURL+"/payment-status", map[string]string{"status": "paid"}, admin)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &order)
	assert.Equal(t, model.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, model.OrderStatusConfirmed, order.Status)

	w = e.do(t, http.MethodGet, "/api/orders/export", nil, buyer)
	requireStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodGet, "/api/orders/export?from=2026-13-01", nil, admin)
	requireStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodGet, "/api/orders/export", nil, admin)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, report.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.OrderSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, order.OrderNumber, rows[1][0])
	assert.Equal(t, "buyer@example.com", rows[1][2])
}
