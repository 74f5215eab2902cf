package controllers

import (
	"net/http"
	"strings"
	"time"

	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/validation"
)

// PaymentController manages saved payment methods. Raw card numbers and
// CVVs are validated and dropped; only the brand and last four digits
// are stored.
type PaymentController struct {
	Common
	PaymentMethods repository.PaymentMethods
	Now            func() time.Time
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(common Common, methods repository.PaymentMethods) *PaymentController {
	return &PaymentController{
		Common:         common,
		PaymentMethods: methods,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// Card brands
const (
	BrandVisa       = "Visa"
	BrandMastercard = "Mastercard"
	BrandAmex       = "American Express"
	BrandDiscover   = "Discover"
	BrandUnknown    = "Card"
)

// normalizeCardNumber strips spaces and dashes.
func normalizeCardNumber(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

func prefixIn(number string, length, lo, hi int) bool {
	if len(number) < length {
		return false
	}
	n := 0
	for _, r := range number[:length] {
		n = n*10 + int(r-'0')
	}
	return n >= lo && n <= hi
}

// DetectCardBrand identifies the card network from the number prefix.
func DetectCardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return BrandVisa
	case prefixIn(number, 2, 51, 55), prefixIn(number, 4, 2221, 2720):
		return BrandMastercard
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return BrandAmex
	case strings.HasPrefix(number, "6011"), strings.HasPrefix(number, "65"), prefixIn(number, 3, 644, 649):
		return BrandDiscover
	}
	return BrandUnknown
}

func (pc *PaymentController) respondList(w http.ResponseWriter, r *http.Request, status int, message string) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := pc.context(r)
	defer cancel()
	methods, err := pc.PaymentMethods.List(ctx, userID)
	if err != nil {
		pc.storeError(w, err, "", "list payment methods")
		return
	}
	payload := map[string]interface{}{"paymentMethods": methods}
	if message != "" {
		payload["message"] = message
	}
	respond(w, status, payload)
}

// GetPaymentMethods lists the user's saved cards
func (pc *PaymentController) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	pc.respondList(w, r, http.StatusOK, "")
}

// CreatePaymentMethod saves a card summary
func (pc *PaymentController) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req validation.PaymentMethodRequest
	if !decode(w, r, &req) {
		return
	}
	number := normalizeCardNumber(req.CardNumber)
	req.CardNumber = number
	if !pc.validate(w, &req) {
		return
	}

	method := &models.PaymentMethod{
		UserID:         userID,
		CardBrand:      DetectCardBrand(number),
		Last4:          number[len(number)-4:],
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CardholderName: strings.TrimSpace(req.CardholderName),
	}
	if method.Expired(pc.Now()) {
		fail(w, http.StatusBadRequest, "Card has expired")
		return
	}

	ctx, cancel := pc.context(r)
	defer cancel()
	existing, err := pc.PaymentMethods.List(ctx, userID)
	if err != nil {
		pc.storeError(w, err, "", "list payment methods")
		return
	}
	if err := pc.PaymentMethods.Create(ctx, method); err != nil {
		pc.storeError(w, err, "", "create payment method")
		return
	}
	if req.IsDefault || len(existing) == 0 {
		if err := pc.PaymentMethods.SetDefault(ctx, method.ID, userID); err != nil {
			pc.storeError(w, err, "", "set default payment method")
			return
		}
	}

	pc.respondList(w, r, http.StatusCreated, "Payment method added")
}

// UpdatePaymentMethod edits expiry, name and default flag
func (pc *PaymentController) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "payment method")
	if !ok {
		return
	}
	var req validation.PaymentMethodUpdate
	if !pc.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := pc.context(r)
	defer cancel()
	method, err := pc.PaymentMethods.Get(ctx, id, userID)
	if err != nil {
		pc.storeError(w, err, "Payment method not found", "get payment method")
		return
	}
	method.ExpiryMonth = req.ExpiryMonth
	method.ExpiryYear = req.ExpiryYear
	method.CardholderName = strings.TrimSpace(req.CardholderName)
	if method.Expired(pc.Now()) {
		fail(w, http.StatusBadRequest, "Card has expired")
		return
	}
	if err := pc.PaymentMethods.Update(ctx, method); err != nil {
		pc.storeError(w, err, "Payment method not found", "update payment method")
		return
	}
	if req.IsDefault && !method.IsDefault {
		if err := pc.PaymentMethods.SetDefault(ctx, id, userID); err != nil {
			pc.storeError(w, err, "Payment method not found", "set default payment method")
			return
		}
	}

	pc.respondList(w, r, http.StatusOK, "Payment method updated")
}

// DeletePaymentMethod removes a saved card
func (pc *PaymentController) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "payment method")
	if !ok {
		return
	}

	ctx, cancel := pc.context(r)
	defer cancel()
	if err := pc.PaymentMethods.Delete(ctx, id, userID); err != nil {
		pc.storeError(w, err, "Payment method not found", "delete payment method")
		return
	}

	pc.respondList(w, r, http.StatusOK, "Payment method deleted")
}

// SetDefaultPaymentMethod marks a card as the default
func (pc *PaymentController) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "payment method")
	if !ok {
		return
	}

	ctx, cancel := pc.context(r)
	defer cancel()
	if err := pc.PaymentMethods.SetDefault(ctx, id, userID); err != nil {
		pc.storeError(w, err, "Payment method not found", "set default payment method")
		return
	}

	pc.respondList(w, r, http.StatusOK, "Default payment method updated")
}
