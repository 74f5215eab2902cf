package controllers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/validation"
)

// AddressController manages a user's saved addresses
type AddressController struct {
	Common
	Addresses repository.Addresses
}

// NewAddressController creates a new AddressController
func NewAddressController(common Common, addresses repository.Addresses) *AddressController {
	return &AddressController{Common: common, Addresses: addresses}
}

func (ac *AddressController) respondList(w http.ResponseWriter, r *http.Request, status int, message string) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := ac.context(r)
	defer cancel()
	addresses, err := ac.Addresses.List(ctx, userID)
	if err != nil {
		ac.storeError(w, err, "", "list addresses")
		return
	}
	payload := map[string]interface{}{"addresses": addresses}
	if message != "" {
		payload["message"] = message
	}
	respond(w, status, payload)
}

func applyAddress(a *models.Address, req *validation.AddressRequest) {
	a.FullName = strings.TrimSpace(req.FullName)
	a.Phone = strings.TrimSpace(req.Phone)
	a.Street = strings.TrimSpace(req.Street)
	a.City = strings.TrimSpace(req.City)
	a.State = strings.TrimSpace(req.State)
	a.PostalCode = strings.ToUpper(strings.TrimSpace(req.PostalCode))
	a.Country = strings.TrimSpace(req.Country)
}

// GetAddresses lists the user's addresses, default first
func (ac *AddressController) GetAddresses(w http.ResponseWriter, r *http.Request) {
	ac.respondList(w, r, http.StatusOK, "")
}

// CreateAddress saves a new address. The first address becomes the default.
func (ac *AddressController) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req validation.AddressRequest
	if !ac.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := ac.context(r)
	defer cancel()
	existing, err := ac.Addresses.List(ctx, userID)
	if err != nil {
		ac.storeError(w, err, "", "list addresses")
		return
	}

	address := &models.Address{UserID: userID}
	applyAddress(address, &req)
	makeDefault := req.IsDefault || len(existing) == 0
	if err := ac.Addresses.Create(ctx, address); err != nil {
		ac.storeError(w, err, "", "create address")
		return
	}
	if makeDefault {
		if err := ac.Addresses.SetDefault(ctx, address.ID, userID); err != nil {
			ac.storeError(w, err, "", "set default address")
			return
		}
	}

	ac.respondList(w, r, http.StatusCreated, "Address added")
}

// UpdateAddress edits an address. Orders keep their own snapshot.
func (ac *AddressController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "address")
	if !ok {
		return
	}
	var req validation.AddressRequest
	if !ac.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := ac.context(r)
	defer cancel()
	address, err := ac.Addresses.Get(ctx, id, userID)
	if err != nil {
		ac.storeError(w, err, "Address not found", "get address")
		return
	}
	applyAddress(address, &req)
	if err := ac.Addresses.Update(ctx, address); err != nil {
		ac.storeError(w, err, "Address not found", "update address")
		return
	}
	if req.IsDefault && !address.IsDefault {
		if err := ac.Addresses.SetDefault(ctx, id, userID); err != nil {
			ac.storeError(w, err, "Address not found", "set default address")
			return
		}
	}

	ac.respondList(w, r, http.StatusOK, "Address updated")
}

// DeleteAddress removes an address. Deleting the default promotes the
// most recent remaining address.
func (ac *AddressController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "address")
	if !ok {
		return
	}

	ctx, cancel := ac.context(r)
	defer cancel()
	address, err := ac.Addresses.Get(ctx, id, userID)
	if err != nil {
		ac.storeError(w, err, "Address not found", "get address")
		return
	}
	if err := ac.Addresses.Delete(ctx, id, userID); err != nil {
		ac.storeError(w, err, "Address not found", "delete address")
		return
	}

	if address.IsDefault {
		remaining, err := ac.Addresses.List(ctx, userID)
		if err != nil {
			ac.storeError(w, err, "", "list addresses")
			return
		}
		if len(remaining) > 0 {
			if err := ac.Addresses.SetDefault(ctx, remaining[0].ID, userID); err != nil {
				ac.Logger.Warn("promote default address", zap.Error(err))
			}
		}
	}

	ac.respondList(w, r, http.StatusOK, "Address deleted")
}

// SetDefaultAddress marks an address as the default
func (ac *AddressController) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "address")
	if !ok {
		return
	}

	ctx, cancel := ac.context(r)
	defer cancel()
	if err := ac.Addresses.SetDefault(ctx, id, userID); err != nil {
		ac.storeError(w, err, "Address not found", "set default address")
		return
	}

	ac.respondList(w, r, http.StatusOK, "Default address updated")
}
