package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"go-storefront/models"
)

func TestDetectCardBrand(t *testing.T) {
	tests := map[string]string{
		"4111111111111111": BrandVisa,
		"5555555555554444": BrandMastercard,
		"2223003122003222": BrandMastercard,
		"378282246310005":  BrandAmex,
		"6011111111111117": BrandDiscover,
		"6445644564456445": BrandDiscover,
		"3530111333300000": BrandUnknown,
	}
	for number, want := range tests {
		if got := DetectCardBrand(number); got != want {
			t.Errorf("DetectCardBrand(%s) = %s, want %s", number, got, want)
		}
	}
}

func newPaymentController(store *memPayments) *PaymentController {
	pc := NewPaymentController(testCommon(), store)
	pc.Now = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }
	return pc
}

func TestCreatePaymentMethod(t *testing.T) {
	store := &memPayments{}
	pc := newPaymentController(store)

	rec := serve(t, "/api/payment-methods", http.MethodPost, "/api/payment-methods", map[string]interface{}{
		"cardNumber":     "4111 1111-1111 1111",
		"cvv":            "123",
		"expiryMonth":    6,
		"expiryYear":     2025,
		"cardholderName": "Jane Doe",
	}, testClaims(models.RoleUser), pc.CreatePaymentMethod)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	list, _ := store.List(context.Background(), testUserID)
	if len(list) != 1 {
		t.Fatalf("stored %d methods", len(list))
	}
	got := list[0]
	if got.CardBrand != BrandVisa || got.Last4 != "1111" || !got.IsDefault {
		t.Errorf("stored = %+v", got)
	}
	if body := rec.Body.String(); strings.Contains(body, "4111111111111111") {
		t.Errorf("response leaks card number: %s", body)
	}
}

func TestCreatePaymentMethod_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"expired", map[string]interface{}{
			"cardNumber": "4111111111111111", "cvv": "123", "expiryMonth": 5, "expiryYear": 2025, "cardholderName": "Jane",
		}},
		{"bad luhn", map[string]interface{}{
			"cardNumber": "4111111111111112", "cvv": "123", "expiryMonth": 5, "expiryYear": 2030, "cardholderName": "Jane",
		}},
		{"bad cvv", map[string]interface{}{
			"cardNumber": "4111111111111111", "cvv": "12", "expiryMonth": 5, "expiryYear": 2030, "cardholderName": "Jane",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memPayments{}
			pc := newPaymentController(store)
			rec := serve(t, "/api/payment-methods", http.MethodPost, "/api/payment-methods", tt.body, testClaims(models.RoleUser), pc.CreatePaymentMethod)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if len(store.items) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestSetDefaultPaymentMethod(t *testing.T) {
	store := &memPayments{}
	first := models.PaymentMethod{UserID: testUserID, CardBrand: BrandVisa, Last4: "1111", IsDefault: true}
	second := models.PaymentMethod{UserID: testUserID, CardBrand: BrandAmex, Last4: "0005"}
	store.Create(context.Background(), &first)
	store.Create(context.Background(), &second)
	pc := newPaymentController(store)

	rec := serve(t, "/api/payment-methods/{id}/default", http.MethodPut, "/api/payment-methods/"+second.ID.Hex()+"/default",
		nil, testClaims(models.RoleUser), pc.SetDefaultPaymentMethod)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	a, _ := store.Get(context.Background(), first.ID, testUserID)
	b, _ := store.Get(context.Background(), second.ID, testUserID)
	if a.IsDefault || !b.IsDefault {
		t.Errorf("defaults = %v %v", a.IsDefault, b.IsDefault)
	}
}
