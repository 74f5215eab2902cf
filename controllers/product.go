package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/validation"
)

// ProductController handles product-related requests
type ProductController struct {
	Common
	Products repository.Products
	Users    repository.Users
}

// NewProductController creates a new ProductController
func NewProductController(common Common, products repository.Products, users repository.Users) *ProductController {
	return &ProductController{Common: common, Products: products, Users: users}
}

func validProduct(p *models.Product) string {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return "Product name is required"
	case p.Price < 0:
		return "Price must not be negative"
	case p.Stock < 0:
		return "Stock must not be negative"
	}
	return ""
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		fail(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if msg := validProduct(&product); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}
	product.ID = primitive.NilObjectID
	product.Rating, product.ReviewCount, product.Reviews = 0, 0, nil

	ctx, cancel := pc.context(r)
	defer cancel()
	if err := pc.Products.Create(ctx, &product); err != nil {
		pc.storeError(w, err, "", "create product")
		return
	}

	respond(w, http.StatusCreated, map[string]interface{}{"product": product})
}

// GetProducts retrieves all products, optionally filtered by ?category=
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := pc.context(r)
	defer cancel()

	products, err := pc.Products.List(ctx, r.URL.Query().Get("category"))
	if err != nil {
		pc.storeError(w, err, "", "list products")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"products": products})
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	ctx, cancel := pc.context(r)
	defer cancel()
	product, err := pc.Products.Get(ctx, id)
	if err != nil {
		pc.storeError(w, err, "Product not found", "get product")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"product": product})
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		fail(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if msg := validProduct(&product); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := pc.context(r)
	defer cancel()
	if err := pc.Products.Update(ctx, id, &product); err != nil {
		pc.storeError(w, err, "Product not found", "update product")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"message": "Product updated"})
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	ctx, cancel := pc.context(r)
	defer cancel()
	if err := pc.Products.Delete(ctx, id); err != nil {
		pc.storeError(w, err, "Product not found", "delete product")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"message": "Product deleted"})
}

// AddReview rates a product and returns the refreshed rating.
func (pc *ProductController) AddReview(w http.ResponseWriter, r *http.Request) {
	userID, claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}
	var req validation.ReviewRequest
	if !pc.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := pc.context(r)
	defer cancel()

	name := claims.Email
	if user, err := pc.Users.FindByID(ctx, userID); err == nil && user.Name != "" {
		name = user.Name
	}

	product, err := pc.Products.AddReview(ctx, id, models.Review{
		UserID:    userID,
		Name:      name,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		pc.storeError(w, err, "Product not found", "add review")
		return
	}

	respond(w, http.StatusCreated, map[string]interface{}{
		"rating":      product.Rating,
		"reviewCount": product.ReviewCount,
	})
}
