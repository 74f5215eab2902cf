package controllers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/orderview"
	"go-storefront/repository"
	"go-storefront/validation"
)

// CartController handles cart-related requests
type CartController struct {
	Common
	Carts    repository.Carts
	Products repository.Products
}

// NewCartController creates a new CartController
func NewCartController(common Common, carts repository.Carts, products repository.Products) *CartController {
	return &CartController{Common: common, Carts: carts, Products: products}
}

func cartPayload(cart *models.Cart) map[string]interface{} {
	return map[string]interface{}{
		"cart":      cart,
		"itemCount": cart.ItemCount(),
		"summary":   orderview.SummarizeCart(cart).Lines(),
	}
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := cc.context(r)
	defer cancel()
	cart, err := cc.Carts.Get(ctx, userID)
	if err != nil {
		cc.storeError(w, err, "Cart not found", "get cart")
		return
	}

	respond(w, http.StatusOK, cartPayload(cart))
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req validation.CartAddRequest
	if !cc.decodeAndValidate(w, r, &req) {
		return
	}
	productID, _ := primitive.ObjectIDFromHex(req.ProductID)

	ctx, cancel := cc.context(r)
	defer cancel()

	product, err := cc.Products.Get(ctx, productID)
	if err != nil {
		cc.storeError(w, err, "Product not found", "get product")
		return
	}
	cart, err := cc.Carts.Get(ctx, userID)
	if err != nil {
		cc.storeError(w, err, "", "get cart")
		return
	}

	quantity := req.Quantity
	updated := false
	for i, existing := range cart.Items {
		if existing.ProductID == productID {
			quantity += existing.Quantity
			cart.Items[i].Quantity = quantity
			cart.Items[i].Name = product.Name
			cart.Items[i].Price = product.Price
			cart.Items[i].Image = product.Image
			updated = true
			break
		}
	}
	if quantity > product.Stock {
		fail(w, http.StatusBadRequest, "Insufficient stock for product: "+product.Name)
		return
	}
	if !updated {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			Image:     product.Image,
		})
	}

	if err := cc.Carts.Save(ctx, cart); err != nil {
		cc.storeError(w, err, "", "save cart")
		return
	}
	payload := cartPayload(cart)
	payload["message"] = "Item added to cart"
	respond(w, http.StatusOK, payload)
}

// UpdateCart sets the quantity of a line. Quantity 0 removes it.
func (cc *CartController) UpdateCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req validation.CartUpdateRequest
	if !cc.decodeAndValidate(w, r, &req) {
		return
	}
	productID, _ := primitive.ObjectIDFromHex(req.ProductID)

	ctx, cancel := cc.context(r)
	defer cancel()

	cart, err := cc.Carts.Get(ctx, userID)
	if err != nil {
		cc.storeError(w, err, "", "get cart")
		return
	}

	idx := -1
	for i, it := range cart.Items {
		if it.ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		fail(w, http.StatusNotFound, "Item not in cart")
		return
	}

	if req.Quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		product, err := cc.Products.Get(ctx, productID)
		if err != nil {
			cc.storeError(w, err, "Product not found", "get product")
			return
		}
		if req.Quantity > product.Stock {
			fail(w, http.StatusBadRequest, "Insufficient stock for product: "+product.Name)
			return
		}
		cart.Items[idx].Quantity = req.Quantity
		cart.Items[idx].Price = product.Price
	}

	if err := cc.Carts.Save(ctx, cart); err != nil {
		cc.storeError(w, err, "", "save cart")
		return
	}
	respond(w, http.StatusOK, cartPayload(cart))
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	ctx, cancel := cc.context(r)
	defer cancel()
	cart, err := cc.Carts.Get(ctx, userID)
	if err != nil {
		cc.storeError(w, err, "", "get cart")
		return
	}

	updatedItems := []models.CartItem{}
	for _, item := range cart.Items {
		if item.ProductID != productID {
			updatedItems = append(updatedItems, item)
		}
	}
	cart.Items = updatedItems

	if err := cc.Carts.Save(ctx, cart); err != nil {
		cc.storeError(w, err, "", "save cart")
		return
	}
	payload := cartPayload(cart)
	payload["message"] = "Item removed from cart"
	respond(w, http.StatusOK, payload)
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := cc.context(r)
	defer cancel()
	if err := cc.Carts.Clear(ctx, userID); err != nil {
		cc.storeError(w, err, "", "clear cart")
		return
	}
	respond(w, http.StatusOK, cartPayload(&models.Cart{UserID: userID, Items: []models.CartItem{}}))
}
