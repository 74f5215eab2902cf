package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"go-storefront/validation"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client(), NewSession(), zap.NewNop()), srv
}

func TestClientErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]interface{}
		want   ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "Invalid token"}, KindUnauthorized},
		{"not found", http.StatusNotFound, map[string]interface{}{"success": false, "message": "Order not found"}, KindNotFound},
		{"field errors", http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Validation failed", "fields": map[string]string{"email": "Must be a valid email address"}}, KindValidation},
		{"plain bad request", http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Cart is empty"}, KindNetwork},
		{"conflict", http.StatusConflict, map[string]interface{}{"success": false, "message": "Order can no longer be cancelled"}, KindNetwork},
		{"server error", http.StatusInternalServerError, map[string]interface{}{"success": false}, KindNetwork},
		{"success false", http.StatusOK, map[string]interface{}{"success": false, "message": "nope"}, KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			_, err := c.GetOrder(context.Background(), "65f1c2a9b3e4d5f6a7b8c9d0")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Kind != tt.want {
				t.Errorf("kind = %s, want %s", apiErr.Kind, tt.want)
			}
			if apiErr.Message == "" {
				t.Error("message should never be empty")
			}
		})
	}
}

func TestClientTransportFailure(t *testing.T) {
	c, srv := newTestClient(t, http.NotFoundHandler())
	srv.Close()

	_, err := c.Addresses(context.Background())
	if KindOf(err) != KindNetwork {
		t.Fatalf("kind = %s (%v)", KindOf(err), err)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var got string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "addresses": []interface{}{}})
	}))
	c.Session().SignIn("abc.def", nil)

	if _, err := c.Addresses(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer abc.def" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestClientValidatesBeforeSending(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}))

	_, err := c.CreateAddress(context.Background(), validation.AddressRequest{FullName: "Jane", Phone: "abc"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindValidation {
		t.Fatalf("err = %v", err)
	}
	for _, f := range []string{"phone", "street", "city", "postalCode", "country"} {
		if apiErr.Fields[f] == "" {
			t.Errorf("no message for %s: %v", f, apiErr.Fields)
		}
	}

	if _, err := c.TrackOrder(context.Background(), "12345", "not-an-email"); KindOf(err) != KindValidation {
		t.Errorf("track: %v", err)
	}
	if _, err := c.PlaceOrder(context.Background(), "", ""); KindOf(err) != KindValidation {
		t.Errorf("place order: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("%d requests sent, want 0", n)
	}
}

func TestClientCartUpdatesSession(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"cart":      map[string]interface{}{"items": []map[string]interface{}{{"name": "Lamp", "price": 12.5, "quantity": 2}}},
			"itemCount": 2,
			"summary":   []map[string]string{{"label": "Subtotal", "value": "$25.00"}},
		})
	}))

	if _, err := c.Cart(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap, ok := c.Session().Cart()
	if !ok || snap.ItemCount != 2 || snap.Cart.Items[0].Name != "Lamp" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestLoginRedirect(t *testing.T) {
	if got := LoginRedirect("/orders/abc?x=1"); got != "/login?redirect=%2Forders%2Fabc%3Fx%3D1" {
		t.Errorf("LoginRedirect = %s", got)
	}
}

func TestSequencer(t *testing.T) {
	s := NewSequencer()
	first := s.Next("order")
	second := s.Next("order")
	other := s.Next("cart")

	if s.Current("order", first) {
		t.Error("first should be stale")
	}
	if !s.Current("order", second) || !s.Current("cart", other) {
		t.Error("latest should be current per panel")
	}
}
