package controllers

import (
	"context"
	"net/http"
	"testing"

	"go-storefront/models"
)

func addressBody(name string, isDefault bool) map[string]interface{} {
	return map[string]interface{}{
		"fullName":   name,
		"phone":      "+1 555-123-4567",
		"street":     "1 Main St",
		"city":       "Springfield",
		"postalCode": "12345",
		"country":    "US",
		"isDefault":  isDefault,
	}
}

func defaultName(t *testing.T, store *memAddresses) string {
	t.Helper()
	list, _ := store.List(context.Background(), testUserID)
	for _, a := range list {
		if a.IsDefault {
			return a.FullName
		}
	}
	return ""
}

func TestAddressDefaults(t *testing.T) {
	store := &memAddresses{}
	ac := NewAddressController(testCommon(), store)
	claims := testClaims(models.RoleUser)

	for _, body := range []map[string]interface{}{
		addressBody("Home", false),
		addressBody("Work", false),
		addressBody("Cabin", false),
	} {
		rec := serve(t, "/api/addresses", http.MethodPost, "/api/addresses", body, claims, ac.CreateAddress)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
		}
	}
	if got := defaultName(t, store); got != "Home" {
		t.Fatalf("first address should be default, got %q", got)
	}

	list, _ := store.List(context.Background(), testUserID)
	var work models.Address
	for _, a := range list {
		if a.FullName == "Work" {
			work = a
		}
	}
	rec := serve(t, "/api/addresses/{id}/default", http.MethodPut, "/api/addresses/"+work.ID.Hex()+"/default", nil, claims, ac.SetDefaultAddress)
	if rec.Code != http.StatusOK {
		t.Fatalf("set default: %d", rec.Code)
	}
	if got := defaultName(t, store); got != "Work" {
		t.Fatalf("default = %q, want Work", got)
	}

	rec = serve(t, "/api/addresses/{id}", http.MethodDelete, "/api/addresses/"+work.ID.Hex(), nil, claims, ac.DeleteAddress)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	// most recent remaining is promoted
	if got := defaultName(t, store); got != "Cabin" {
		t.Fatalf("default after delete = %q, want Cabin", got)
	}
}

func TestCreateAddress_Validation(t *testing.T) {
	ac := NewAddressController(testCommon(), &memAddresses{})
	body := addressBody("", false)
	body["phone"] = "12"
	body["postalCode"] = "!!"

	rec := serve(t, "/api/addresses", http.MethodPost, "/api/addresses", body, testClaims(models.RoleUser), ac.CreateAddress)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	fields, _ := decodeBody(t, rec)["fields"].(map[string]interface{})
	for _, f := range []string{"fullName", "phone", "postalCode"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("missing field error for %s in %v", f, fields)
		}
	}
}

func TestUpdateAddress_NotFound(t *testing.T) {
	ac := NewAddressController(testCommon(), &memAddresses{})
	rec := serve(t, "/api/addresses/{id}", http.MethodPut, "/api/addresses/65f1c2a9b3e4d5f6a7b8c9d0",
		addressBody("Home", false), testClaims(models.RoleUser), ac.UpdateAddress)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
