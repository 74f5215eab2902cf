package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"go-storefront/models"
	"go-storefront/orderview"
	"go-storefront/validation"
)

const maxResponseBytes = 4 << 20

// Client calls the storefront REST API on behalf of one Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	validate   *validatorv10.Validate
	logger     *zap.Logger
}

// NewClient creates a Client. A nil httpClient gets a 15 second timeout.
func NewClient(baseURL string, httpClient *http.Client, session *Session, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    session,
		validate:   validation.New(),
		logger:     logger,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session { return c.session }

// LoginRedirect is the login URL that returns the user to original
// after signing in.
func LoginRedirect(original string) string {
	return "/login?redirect=" + url.QueryEscape(original)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// check validates a request body before it is sent.
func (c *Client) check(v interface{}) error {
	if err := c.validate.Struct(v); err != nil {
		return &APIError{
			Kind:    KindValidation,
			Message: "Please correct the highlighted fields",
			Fields:  validation.Fields(err),
			Err:     err,
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindNetwork, Message: "could not encode request", Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &APIError{Kind: KindNetwork, Message: "Network error, please try again", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: "Network error, please try again", Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: env.Message}
		if resp.StatusCode == http.StatusBadRequest && len(env.Fields) > 0 {
			apiErr.Kind = KindValidation
			apiErr.Fields = env.Fields
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if decodeErr != nil {
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: "Unexpected response from server", Err: decodeErr}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "Request failed"
		}
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: msg}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: "Unexpected response from server", Err: err}
		}
	}
	return nil
}

// Login signs in and stores the token and user on the session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", body, &out); err != nil {
		return nil, err
	}
	c.session.SignIn(out.Token, &out.User)
	return &out.User, nil
}

// GetOrder fetches one of the signed-in user's orders.
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var out struct {
		Order *models.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, &APIError{Kind: KindNotFound, Message: "Order not found"}
	}
	return out.Order, nil
}

// CancelOrder cancels an order and returns the server's message.
func (c *Client) CancelOrder(ctx context.Context, id string) (string, error) {
	var out envelope
	if err := c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(id)+"/cancel", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// TrackOrder looks up an order by number and email. No request is sent
// when either field is invalid.
func (c *Client) TrackOrder(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	req := validation.TrackRequest{
		OrderNumber: strings.TrimSpace(orderNumber),
		Email:       strings.TrimSpace(email),
	}
	if err := c.check(req); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("orderNumber", req.OrderNumber)
	q.Set("email", req.Email)

	var out struct {
		Order *models.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tracking?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, &APIError{Kind: KindNotFound, Message: "No order found"}
	}
	return out.Order, nil
}

type addressesResponse struct {
	Addresses []models.Address `json:"addresses"`
}

// Addresses lists saved addresses.
func (c *Client) Addresses(ctx context.Context) ([]models.Address, error) {
	var out addressesResponse
	if err := c.do(ctx, http.MethodGet, "/api/addresses", nil, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

// CreateAddress saves an address and returns the refreshed list.
func (c *Client) CreateAddress(ctx context.Context, req validation.AddressRequest) ([]models.Address, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out addressesResponse
	if err := c.do(ctx, http.MethodPost, "/api/addresses", req, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

// UpdateAddress edits an address and returns the refreshed list.
func (c *Client) UpdateAddress(ctx context.Context, id string, req validation.AddressRequest) ([]models.Address, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out addressesResponse
	if err := c.do(ctx, http.MethodPut, "/api/addresses/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

// DeleteAddress removes an address and returns the refreshed list.
func (c *Client) DeleteAddress(ctx context.Context, id string) ([]models.Address, error) {
	var out addressesResponse
	if err := c.do(ctx, http.MethodDelete, "/api/addresses/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

// SetDefaultAddress marks an address as default.
func (c *Client) SetDefaultAddress(ctx context.Context, id string) ([]models.Address, error) {
	var out addressesResponse
	if err := c.do(ctx, http.MethodPut, "/api/addresses/"+url.PathEscape(id)+"/default", nil, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

type paymentMethodsResponse struct {
	PaymentMethods []models.PaymentMethod `json:"paymentMethods"`
}

// PaymentMethods lists saved card summaries.
func (c *Client) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var out paymentMethodsResponse
	if err := c.do(ctx, http.MethodGet, "/api/payment-methods", nil, &out); err != nil {
		return nil, err
	}
	return out.PaymentMethods, nil
}

// CreatePaymentMethod sends card details once; only the masked summary
// comes back.
func (c *Client) CreatePaymentMethod(ctx context.Context, req validation.PaymentMethodRequest) ([]models.PaymentMethod, error) {
	req.CardNumber = strings.NewReplacer(" ", "", "-", "").Replace(req.CardNumber)
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out paymentMethodsResponse
	if err := c.do(ctx, http.MethodPost, "/api/payment-methods", req, &out); err != nil {
		return nil, err
	}
	return out.PaymentMethods, nil
}

// UpdatePaymentMethod edits expiry, name and default flag.
func (c *Client) UpdatePaymentMethod(ctx context.Context, id string, req validation.PaymentMethodUpdate) ([]models.PaymentMethod, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out paymentMethodsResponse
	if err := c.do(ctx, http.MethodPut, "/api/payment-methods/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return out.PaymentMethods, nil
}

// CartView is the cart as returned by the API, with its rendered summary.
type CartView struct {
	Cart      models.Cart             `json:"cart"`
	ItemCount int                     `json:"itemCount"`
	Summary   []orderview.SummaryLine `json:"summary"`
}

func (c *Client) cartCall(ctx context.Context, method, path string, body interface{}) (*CartView, error) {
	var out CartView
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	c.session.SetCart(out)
	return &out, nil
}

// Cart fetches the cart and refreshes the session snapshot.
func (c *Client) Cart(ctx context.Context) (*CartView, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

// UpdateCartItem sets a line quantity; zero removes the line.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*CartView, error) {
	req := validation.CartUpdateRequest{ProductID: productID, Quantity: quantity}
	if err := c.check(req); err != nil {
		return nil, err
	}
	return c.cartCall(ctx, http.MethodPut, "/cart/update", req)
}

// RemoveCartItem drops a line.
func (c *Client) RemoveCartItem(ctx context.Context, productID string) (*CartView, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) (*CartView, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/clear", nil)
}

// PlaceOrder submits the cart as an order.
func (c *Client) PlaceOrder(ctx context.Context, addressID, paymentMethodID string) (*models.Order, error) {
	req := validation.PlaceOrderRequest{AddressID: addressID, PaymentMethodID: paymentMethodID}
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out struct {
		Order *models.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &out); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, &APIError{Kind: KindNetwork, Message: "Unexpected response from server", Err: errors.New("order missing from response")}
	}
	c.session.ClearCart()
	return out.Order, nil
}

// ChatReply is one assistant answer.
type ChatReply struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
	Provider  string `json:"provider"`
}

// Chat sends a support message. An empty sessionID starts a new session.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (*ChatReply, error) {
	req := validation.ChatRequest{Message: strings.TrimSpace(message), SessionID: sessionID}
	if err := c.check(req); err != nil {
		return nil, err
	}
	var out ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/ai/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatHealth reports which chat provider the server is using.
func (c *Client) ChatHealth(ctx context.Context) (string, error) {
	var out struct {
		Provider string `json:"provider"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/ai/chat/health", nil, &out); err != nil {
		return "", err
	}
	if out.Provider == "" {
		return "", &APIError{Kind: KindNetwork, Message: "Unexpected response from server", Err: errors.New("empty provider")}
	}
	return out.Provider, nil
}
