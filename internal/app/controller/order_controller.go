package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/report"
	"github.com/shopspring/decimal"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// OrderHeaderRequest holds the order fields a customer picks at checkout.
type OrderHeaderRequest struct {
	ShippingAddress  string           `json:"shippingAddress" binding:"max=1000"`
	ShippingCost     *decimal.Decimal `json:"shippingCost"`
	ShippingMethodID *uuid.UUID       `json:"shippingMethodId"`
	PaymentMethodID  *uuid.UUID       `json:"paymentMethodId"`
}

func (r OrderHeaderRequest) input() service.PlaceOrderInput {
	input := service.PlaceOrderInput{
		ShippingAddress:  r.ShippingAddress,
		ShippingCost:     decimal.Zero,
		ShippingMethodID: r.ShippingMethodID,
		PaymentMethodID:  r.PaymentMethodID,
	}
	if r.ShippingCost != nil {
		input.ShippingCost = *r.ShippingCost
	}
	return input
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity"`
}

type DirectOrderRequest struct {
	OrderHeaderRequest
	Items []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Checkout places an order from the user's cart and empties it.
// POST /api/orders/user/:userId/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	var req OrderHeaderRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orderService.PlaceFromCart(c.Request.Context(), userID, req.input())
	if err != nil {
		respondError(c, err, "place order")
		return
	}
	ctrl.logPlaced(c, order)
	c.JSON(http.StatusCreated, order)
}

// PlaceDirect places an order from an explicit item list.
// POST /api/orders/user/:userId
func (ctrl *OrderController) PlaceDirect(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	var req DirectOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]model.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, model.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := ctrl.orderService.PlaceDirect(c.Request.Context(), userID, lines, req.OrderHeaderRequest.input())
	if err != nil {
		respondError(c, err, "place order")
		return
	}
	ctrl.logPlaced(c, order)
	c.JSON(http.StatusCreated, order)
}

func (ctrl *OrderController) logPlaced(c *gin.Context, order *model.OrderDetail) {
	middleware.GetLoggerFromContext(c).Info("Order placed", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total.String(),
		"items":        len(order.Items),
	})
}

// ListUserOrders returns a user's orders, newest first.
// GET /api/orders/user/:userId?limit=&offset=
func (ctrl *OrderController) ListUserOrders(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", service.DefaultOrderLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListUserOrders(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one order with its item snapshot.
// GET /api/orders/:orderId
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := ctrl.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err, "fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// Cancel cancels a pending or confirmed order. Stock goes back only with
// restock=true.
// POST /api/orders/:orderId/cancel?restock=
func (ctrl *OrderController) Cancel(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}
	restock, ok := queryBool(c, "restock")
	if !ok {
		return
	}

	order, err := ctrl.orderService.Cancel(c.Request.Context(), orderID, restock != nil && *restock)
	if err != nil {
		respondError(c, err, "cancel order")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
		"restock":  restock != nil && *restock,
	})
	c.JSON(http.StatusOK, order)
}

// UpdateStatus moves an order along its workflow.
// PUT /api/orders/:orderId/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err, "update order status")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdatePaymentStatus
// PUT /api/orders/:orderId/payment-status
func (ctrl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := ctrl.orderService.UpdatePaymentStatus(c.Request.Context(), orderID, model.PaymentStatus(req.Status))
	if err != nil {
		respondError(c, err, "update payment status")
		return
	}
	c.JSON(http.StatusOK, order)
}

// Export streams order items as an XLSX workbook.
// GET /api/orders/export?from=&to=  (RFC 3339 or YYYY-MM-DD)
func (ctrl *OrderController) Export(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}

	rows, err := ctrl.orderService.ExportRows(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err, "export orders")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteOrderExport(&buf, rows); err != nil {
		respondError(c, err, "export orders")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	middleware.GetLoggerFromContext(c).Info("Orders exported", map[string]interface{}{
		"rows": len(rows),
	})
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, report.XLSXContentType, buf.Bytes())
}

func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	apperrors.RespondWithValidationError(c, map[string]string{name: "must be RFC 3339 or YYYY-MM-DD"})
	return nil, false
}
