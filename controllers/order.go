// controllers/order.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-storefront/models"
	"go-storefront/orderview"
	"go-storefront/repository"
	"go-storefront/utils"
	"go-storefront/validation"
)

// OrderController handles order-related requests
type OrderController struct {
	Common
	Orders         repository.Orders
	Carts          repository.Carts
	Products       repository.Products
	Addresses      repository.Addresses
	PaymentMethods repository.PaymentMethods
	EmailService   *utils.EmailService
	NumberFormat   orderview.NumberFormat
	Now            func() time.Time
}

// OrderStores groups the stores an OrderController reads and writes.
type OrderStores struct {
	Orders         repository.Orders
	Carts          repository.Carts
	Products       repository.Products
	Addresses      repository.Addresses
	PaymentMethods repository.PaymentMethods
}

// NewOrderController creates a new OrderController
func NewOrderController(common Common, stores OrderStores, emailService *utils.EmailService, format orderview.NumberFormat) *OrderController {
	return &OrderController{
		Common:         common,
		Orders:         stores.Orders,
		Carts:          stores.Carts,
		Products:       stores.Products,
		Addresses:      stores.Addresses,
		PaymentMethods: stores.PaymentMethods,
		EmailService:   emailService,
		NumberFormat:   format,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// withOrderNumber fills a missing display number from the id.
func (oc *OrderController) withOrderNumber(o *models.Order) *models.Order {
	if o.OrderNumber == "" {
		o.OrderNumber = orderview.FormatOrderNumber(o.ID.Hex(), oc.NumberFormat)
	}
	if o.Tracking == nil {
		o.Tracking = []models.TrackingEvent{}
	}
	return o
}

// PlaceOrder creates an order from the user's cart
func (oc *OrderController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req validation.PlaceOrderRequest
	if !oc.decodeAndValidate(w, r, &req) {
		return
	}
	addressID, _ := primitive.ObjectIDFromHex(req.AddressID)
	paymentID, _ := primitive.ObjectIDFromHex(req.PaymentMethodID)

	ctx, cancel := oc.context(r)
	defer cancel()

	cart, err := oc.Carts.Get(ctx, userID)
	if err != nil {
		oc.storeError(w, err, "Cart not found", "get cart")
		return
	}
	if len(cart.Items) == 0 {
		fail(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	address, err := oc.Addresses.Get(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(w, http.StatusBadRequest, "Shipping address not found")
			return
		}
		oc.storeError(w, err, "", "get address")
		return
	}
	payment, err := oc.PaymentMethods.Get(ctx, paymentID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(w, http.StatusBadRequest, "Payment method not found")
			return
		}
		oc.storeError(w, err, "", "get payment method")
		return
	}
	now := oc.Now()
	if payment.Expired(now) {
		fail(w, http.StatusBadRequest, "Payment method has expired")
		return
	}

	// lines are priced from the catalog at order time, not from the cart
	for i, line := range cart.Items {
		product, err := oc.Products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				fail(w, http.StatusBadRequest, "Product no longer available: "+line.Name)
				return
			}
			oc.storeError(w, err, "", "get product")
			return
		}
		cart.Items[i].Name = product.Name
		cart.Items[i].Price = product.Price
		cart.Items[i].Image = product.Image
	}

	items := cart.OrderItems()
	summary := orderview.SummarizeCart(cart)
	subtotal, shipping, tax, total := summary.Amounts()

	if err := oc.Products.ReserveStock(ctx, items); err != nil {
		var short *repository.ErrInsufficientStock
		if errors.As(err, &short) {
			fail(w, http.StatusBadRequest, short.Error())
			return
		}
		oc.storeError(w, err, "", "reserve stock")
		return
	}

	id := primitive.NewObjectID()
	order := &models.Order{
		ID:              id,
		OrderNumber:     orderview.FormatOrderNumber(id.Hex(), oc.NumberFormat),
		UserID:          userID,
		CustomerEmail:   strings.ToLower(claims.Email),
		Status:          models.OrderStatusPending,
		Items:           items,
		ShippingAddress: address.Snapshot(),
		PaymentMethod:   payment.Summary(),
		PaymentLast4:    payment.Last4,
		Subtotal:        subtotal,
		ShippingCost:    &shipping,
		Tax:             &tax,
		Total:           total,
		Tracking: []models.TrackingEvent{{
			Status:      models.StepOrderPlaced,
			Description: "Your order has been placed",
			Timestamp:   models.NewTimestamp(now),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := oc.Orders.Create(ctx, order); err != nil {
		if relErr := oc.Products.ReleaseStock(ctx, items); relErr != nil {
			oc.Logger.Error("release stock", zap.String("order", order.OrderNumber), zap.Error(relErr))
		}
		oc.storeError(w, err, "", "create order")
		return
	}

	if err := oc.Carts.Clear(ctx, userID); err != nil {
		// the order stands; a stale cart is recoverable by the user
		oc.Logger.Warn("clear cart after order", zap.String("order", order.OrderNumber), zap.Error(err))
	}

	subject, body := oc.EmailService.OrderConfirmation(order)
	oc.EmailService.SendAsync(order.CustomerEmail, subject, body)

	oc.Logger.Info("order placed",
		zap.String("order", order.OrderNumber),
		zap.String("user", userID.Hex()),
		zap.Float64("total", order.Total))

	respond(w, http.StatusCreated, map[string]interface{}{"order": order})
}

// GetOrders retrieves all orders for the authenticated user, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := oc.context(r)
	defer cancel()
	orders, err := oc.Orders.ListByUser(ctx, userID)
	if err != nil {
		oc.storeError(w, err, "", "list orders")
		return
	}
	for i := range orders {
		oc.withOrderNumber(&orders[i])
	}

	respond(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// GetOrder retrieves one of the authenticated user's orders
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	ctx, cancel := oc.context(r)
	defer cancel()
	order, err := oc.Orders.GetForUser(ctx, id, userID)
	if err != nil {
		oc.storeError(w, err, "Order not found", "get order")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"order": oc.withOrderNumber(order)})
}

// CancelOrder cancels a pending or processing order
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	ctx, cancel := oc.context(r)
	defer cancel()
	order, err := oc.Orders.GetForUser(ctx, id, userID)
	if err != nil {
		oc.storeError(w, err, "Order not found", "get order")
		return
	}
	if !order.CanCancel() {
		fail(w, http.StatusConflict, "Order can no longer be cancelled (status: "+order.Status+")")
		return
	}

	updated, err := oc.Orders.TransitionStatus(ctx, id,
		[]string{models.OrderStatusPending, models.OrderStatusProcessing},
		models.OrderStatusCancelled, nil)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			fail(w, http.StatusConflict, "Order can no longer be cancelled")
			return
		}
		oc.storeError(w, err, "Order not found", "cancel order")
		return
	}
	oc.withOrderNumber(updated)

	if err := oc.Products.ReleaseStock(ctx, updated.Items); err != nil {
		oc.Logger.Error("release stock on cancel", zap.String("order", updated.OrderNumber), zap.Error(err))
	}

	subject, body := oc.EmailService.OrderCancelled(updated)
	oc.EmailService.SendAsync(updated.CustomerEmail, subject, body)

	respond(w, http.StatusOK, map[string]interface{}{
		"message": "Order cancelled successfully",
		"order":   updated,
	})
}

// TrackOrder looks up an order by number and customer email. It is public.
func (oc *OrderController) TrackOrder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := validation.TrackRequest{
		OrderNumber: strings.TrimSpace(q.Get("orderNumber")),
		Email:       strings.TrimSpace(q.Get("email")),
	}
	if !oc.validate(w, req) {
		return
	}

	ctx, cancel := oc.context(r)
	defer cancel()
	order, err := oc.Orders.FindByNumber(ctx, req.OrderNumber, req.Email)
	if err != nil {
		oc.storeError(w, err, "No order found with that order number and email", "track order")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"order": oc.withOrderNumber(order)})
}

// UpdateOrderStatus moves an order forward and records the matching
// tracking event (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}
	var req validation.StatusUpdateRequest
	if !oc.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := oc.context(r)
	defer cancel()
	order, err := oc.Orders.Get(ctx, id)
	if err != nil {
		oc.storeError(w, err, "Order not found", "get order")
		return
	}
	if !models.CanAdvance(order.Status, req.Status) {
		fail(w, http.StatusConflict, "Cannot move order from "+order.Status+" to "+req.Status)
		return
	}

	ev := &models.TrackingEvent{
		Status:      models.StepForStatus(req.Status),
		Description: "Order status updated to " + req.Status,
		Timestamp:   models.NewTimestamp(oc.Now()),
	}
	updated, err := oc.Orders.TransitionStatus(ctx, id, []string{order.Status}, req.Status, ev)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			fail(w, http.StatusConflict, "Order status changed concurrently, reload and retry")
			return
		}
		oc.storeError(w, err, "Order not found", "update order status")
		return
	}
	oc.withOrderNumber(updated)

	subject, body := oc.EmailService.OrderStatusChanged(updated)
	oc.EmailService.SendAsync(updated.CustomerEmail, subject, body)

	respond(w, http.StatusOK, map[string]interface{}{"order": updated})
}

// AddTrackingEvent appends a shipment update to an order (Admin only)
func (oc *OrderController) AddTrackingEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}
	var req validation.TrackingEventRequest
	if !oc.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := oc.context(r)
	defer cancel()
	updated, err := oc.Orders.AppendTracking(ctx, id, models.TrackingEvent{
		Status:      strings.TrimSpace(req.Status),
		Description: strings.TrimSpace(req.Description),
		Timestamp:   models.NewTimestamp(oc.Now()),
	})
	if err != nil {
		oc.storeError(w, err, "Order not found", "append tracking")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"order": oc.withOrderNumber(updated)})
}
