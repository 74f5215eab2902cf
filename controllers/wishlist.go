package controllers

import (
	"errors"
	"net/http"

	"go-storefront/models"
	"go-storefront/repository"
)

// WishlistController manages saved-for-later products
type WishlistController struct {
	Common
	Wishlists repository.Wishlists
	Products  repository.Products
}

// NewWishlistController creates a new WishlistController
func NewWishlistController(common Common, wishlists repository.Wishlists, products repository.Products) *WishlistController {
	return &WishlistController{Common: common, Wishlists: wishlists, Products: products}
}

// GetWishlist returns the saved products. Products deleted from the
// catalog are skipped.
func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := wc.context(r)
	defer cancel()
	list, err := wc.Wishlists.Get(ctx, userID)
	if err != nil {
		wc.storeError(w, err, "", "get wishlist")
		return
	}

	products := make([]models.Product, 0, len(list.ProductIDs))
	for _, id := range list.ProductIDs {
		p, err := wc.Products.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			wc.storeError(w, err, "", "get product")
			return
		}
		p.Reviews = nil
		products = append(products, *p)
	}

	respond(w, http.StatusOK, map[string]interface{}{"products": products})
}

// AddToWishlist saves a product
func (wc *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId", "product")
	if !ok {
		return
	}

	ctx, cancel := wc.context(r)
	defer cancel()
	if _, err := wc.Products.Get(ctx, productID); err != nil {
		wc.storeError(w, err, "Product not found", "get product")
		return
	}
	if err := wc.Wishlists.Add(ctx, userID, productID); err != nil {
		wc.storeError(w, err, "", "add to wishlist")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"message": "Added to wishlist"})
}

// RemoveFromWishlist drops a product
func (wc *WishlistController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId", "product")
	if !ok {
		return
	}

	ctx, cancel := wc.context(r)
	defer cancel()
	if err := wc.Wishlists.Remove(ctx, userID, productID); err != nil {
		wc.storeError(w, err, "", "remove from wishlist")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"message": "Removed from wishlist"})
}
