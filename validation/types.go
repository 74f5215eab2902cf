package validation

// AddressRequest is the payload for creating or updating an address.
type AddressRequest struct {
	FullName   string `json:"fullName" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"required,phone"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postalCode" validate:"required,postalcode"`
	Country    string `json:"country" validate:"required,max=100"`
	IsDefault  bool   `json:"isDefault"`
}

// PaymentMethodRequest carries raw card details. Only the brand, last four
// digits and expiry survive past the handler.
type PaymentMethodRequest struct {
	CardNumber     string `json:"cardNumber" validate:"required,credit_card"`
	CVV            string `json:"cvv" validate:"required,numeric,min=3,max=4"`
	ExpiryMonth    int    `json:"expiryMonth" validate:"required,min=1,max=12"`
	ExpiryYear     int    `json:"expiryYear" validate:"required,min=2000,max=2100"`
	CardholderName string `json:"cardholderName" validate:"required,max=100"`
	IsDefault      bool   `json:"isDefault"`
}

// PaymentMethodUpdate edits the mutable fields of a saved card.
type PaymentMethodUpdate struct {
	ExpiryMonth    int    `json:"expiryMonth" validate:"required,min=1,max=12"`
	ExpiryYear     int    `json:"expiryYear" validate:"required,min=2000,max=2100"`
	CardholderName string `json:"cardholderName" validate:"required,max=100"`
	IsDefault      bool   `json:"isDefault"`
}

// PlaceOrderRequest is the payload for POST /api/orders.
type PlaceOrderRequest struct {
	AddressID       string `json:"addressId" validate:"required,len=24,hexadecimal"`
	PaymentMethodID string `json:"paymentMethodId" validate:"required,len=24,hexadecimal"`
}

// TrackRequest is the public order lookup.
type TrackRequest struct {
	OrderNumber string `json:"orderNumber" validate:"required,ordernumber"`
	Email       string `json:"email" validate:"required,email"`
}

// CartUpdateRequest sets the quantity of a cart line. Zero removes it.
type CartUpdateRequest struct {
	ProductID string `json:"productId" validate:"required,len=24,hexadecimal"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

// CartAddRequest adds a product to the cart.
type CartAddRequest struct {
	ProductID string `json:"productId" validate:"required,len=24,hexadecimal"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

// StatusUpdateRequest is the admin payload for moving an order forward.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=processing shipped delivered"`
}

// TrackingEventRequest is the admin payload for appending a tracking event.
type TrackingEventRequest struct {
	Status      string `json:"status" validate:"required,max=60"`
	Description string `json:"description" validate:"required,max=300"`
}

// ReviewRequest rates a product.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ChatRequest is one customer turn in the support chat.
type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=2000"`
	SessionID string `json:"sessionId" validate:"omitempty,uuid"`
}
