package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-storefront/middleware"
	"go-storefront/repository"
	"go-storefront/utils"
	"go-storefront/validation"
)

// Common holds dependencies shared by every controller.
type Common struct {
	Logger   *zap.Logger
	Validate *validatorv10.Validate
	Timeout  time.Duration
}

// NewCommon fills defaults for a zero timeout or missing validator.
func NewCommon(logger *zap.Logger, timeout time.Duration) Common {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Common{Logger: logger, Validate: validation.New(), Timeout: timeout}
}

func (c Common) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), c.Timeout)
}

// decodeAndValidate reads the JSON body into out and validates it. On
// failure it writes the 400 response and returns false.
func (c Common) decodeAndValidate(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	return decode(w, r, out) && c.validate(w, out)
}

func decode(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (c Common) validate(w http.ResponseWriter, v interface{}) bool {
	if err := c.Validate.Struct(v); err != nil {
		respond(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"fields":  validation.Fields(err),
		})
		return false
	}
	return true
}

// storeError maps a repository error to a response. Unexpected errors are
// logged and reported as 500 with generic text.
func (c Common) storeError(w http.ResponseWriter, err error, notFoundMsg, op string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fail(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, context.DeadlineExceeded):
		c.Logger.Error(op, zap.Error(err))
		fail(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		c.Logger.Error(op, zap.Error(err))
		fail(w, http.StatusInternalServerError, "Database error")
	}
}

func respond(w http.ResponseWriter, status int, payload map[string]interface{}) {
	if _, ok := payload["success"]; !ok {
		payload["success"] = status < http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func fail(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]interface{}{"success": false, "message": message})
}

// currentUser returns the caller's id and claims, writing 401 when absent.
func currentUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, *utils.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, nil, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, nil, false
	}
	return id, claims, true
}

// pathID parses the named path variable as an ObjectID, writing 400 when
// malformed.
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid "+label+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
