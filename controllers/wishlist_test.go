package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
)

func TestWishlist(t *testing.T) {
	lamp := models.Product{ID: primitive.NewObjectID(), Name: "Lamp", Price: 20}
	chair := models.Product{ID: primitive.NewObjectID(), Name: "Chair", Price: 80}
	products := newMemProducts(lamp, chair)
	lists := &memWishlists{}
	wc := NewWishlistController(testCommon(), lists, products)
	claims := testClaims(models.RoleUser)

	for _, p := range []models.Product{lamp, chair} {
		rec := serve(t, "/api/wishlist/{productId}", http.MethodPost, "/api/wishlist/"+p.ID.Hex(), nil, claims, wc.AddToWishlist)
		if rec.Code != http.StatusOK {
			t.Fatalf("add %s: %d", p.Name, rec.Code)
		}
	}
	rec := serve(t, "/api/wishlist/{productId}", http.MethodPost, "/api/wishlist/"+primitive.NewObjectID().Hex(), nil, claims, wc.AddToWishlist)
	if rec.Code != http.StatusNotFound {
		t.Errorf("add unknown product: %d", rec.Code)
	}

	// a product deleted from the catalog drops out of the listing
	products.Delete(context.Background(), chair.ID)
	rec = serve(t, "/api/wishlist", http.MethodGet, "/api/wishlist", nil, claims, wc.GetWishlist)
	got := decodeBody(t, rec)["products"].([]interface{})
	if len(got) != 1 || got[0].(map[string]interface{})["name"] != "Lamp" {
		t.Fatalf("products = %v", got)
	}

	rec = serve(t, "/api/wishlist/{productId}", http.MethodDelete, "/api/wishlist/"+lamp.ID.Hex(), nil, claims, wc.RemoveFromWishlist)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: %d", rec.Code)
	}
	list, _ := lists.Get(context.Background(), testUserID)
	if len(list.ProductIDs) != 1 || list.ProductIDs[0] != chair.ID {
		t.Errorf("ids = %v", list.ProductIDs)
	}
}

type pingErr struct{ err error }

func (p pingErr) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	ok := NewHealthController(testCommon(), pingErr{})
	if rec := serve(t, "/health", http.MethodGet, "/health", nil, nil, ok.Health); rec.Code != http.StatusOK {
		t.Errorf("healthy: %d", rec.Code)
	}
	down := NewHealthController(testCommon(), pingErr{errors.New("no servers")})
	if rec := serve(t, "/health", http.MethodGet, "/health", nil, nil, down.Health); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy: %d", rec.Code)
	}
}
