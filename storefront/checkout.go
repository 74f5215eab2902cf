package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"go-storefront/models"
	"go-storefront/orderview"
	"go-storefront/validation"
)

const (
	addressesPanel = "addresses"
	paymentsPanel  = "payments"
	cartPanel      = "cart"
	checkoutPath   = "/checkout"
)

// AddressPanel lists the saved addresses and the selection.
type AddressPanel struct {
	Status
	Addresses  []models.Address `json:"addresses"`
	SelectedID string           `json:"selectedId,omitempty"`
}

// PaymentPanel lists the saved cards and the selection.
type PaymentPanel struct {
	Status
	PaymentMethods []models.PaymentMethod `json:"paymentMethods"`
	SelectedID     string                 `json:"selectedId,omitempty"`
}

// CartPanel shows the cart being checked out.
type CartPanel struct {
	Status
	Items     []models.CartItem       `json:"items"`
	ItemCount int                     `json:"itemCount"`
	Summary   []orderview.SummaryLine `json:"summary,omitempty"`
}

// CheckoutView is the view-model of the checkout page.
type CheckoutView struct {
	Addresses      AddressPanel `json:"addresses"`
	PaymentMethods PaymentPanel `json:"paymentMethods"`
	Cart           CartPanel    `json:"cart"`
	// Ready gates the place-order button.
	Ready  bool   `json:"ready"`
	Banner string `json:"banner,omitempty"`
}

// CheckoutPage drives checkout. The three panels load independently and
// readiness is recomputed whenever one of them completes.
type CheckoutPage struct {
	client *Client
	seq    *Sequencer
	logger *zap.Logger

	mu   sync.Mutex
	view CheckoutView
}

// NewCheckoutPage creates the page controller with every panel loading.
func NewCheckoutPage(client *Client, logger *zap.Logger) *CheckoutPage {
	loading := Status{State: StateLoading}
	return &CheckoutPage{
		client: client,
		seq:    NewSequencer(),
		logger: logger,
		view: CheckoutView{
			Addresses:      AddressPanel{Status: loading},
			PaymentMethods: PaymentPanel{Status: loading},
			Cart:           CartPanel{Status: loading},
		},
	}
}

// View returns the current view-model.
func (p *CheckoutPage) View() CheckoutView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Ready reports whether an order can be placed now.
func (p *CheckoutPage) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.Ready
}

// recompute must be called with mu held.
func (p *CheckoutPage) recompute() {
	v := &p.view
	v.Ready = v.Addresses.State == StateReady && v.Addresses.SelectedID != "" &&
		v.PaymentMethods.State == StateReady && v.PaymentMethods.SelectedID != "" &&
		v.Cart.State == StateReady && len(v.Cart.Items) > 0
}

// update applies fn if seq is still current for panel.
func (p *CheckoutPage) update(panel string, seq uint64, fn func(v *CheckoutView)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.seq.Current(panel, seq) {
		return
	}
	fn(&p.view)
	p.recompute()
}

// Load starts the three panel loads and waits for them. Each panel
// updates the view as soon as its own response arrives.
func (p *CheckoutPage) Load(ctx context.Context) CheckoutView {
	var wg sync.WaitGroup
	for _, load := range []func(context.Context){p.LoadAddresses, p.LoadPaymentMethods, p.LoadCart} {
		wg.Add(1)
		go func(load func(context.Context)) {
			defer wg.Done()
			load(ctx)
		}(load)
	}
	wg.Wait()
	return p.View()
}

func pickAddress(list []models.Address, current string) string {
	for _, a := range list {
		if a.ID.Hex() == current {
			return current
		}
	}
	for _, a := range list {
		if a.IsDefault {
			return a.ID.Hex()
		}
	}
	if len(list) > 0 {
		return list[0].ID.Hex()
	}
	return ""
}

func pickPaymentMethod(list []models.PaymentMethod, current string) string {
	for _, m := range list {
		if m.ID.Hex() == current {
			return current
		}
	}
	for _, m := range list {
		if m.IsDefault {
			return m.ID.Hex()
		}
	}
	if len(list) > 0 {
		return list[0].ID.Hex()
	}
	return ""
}

func (p *CheckoutPage) setAddresses(seq uint64, list []models.Address, err error) {
	p.update(addressesPanel, seq, func(v *CheckoutView) {
		if err != nil {
			v.Addresses = AddressPanel{Status: statusFor(err, checkoutPath, "Add a delivery address to continue.", p.logger)}
			return
		}
		st := ready()
		if len(list) == 0 {
			st = Status{State: StateEmpty, Banner: "Add a delivery address to continue."}
		}
		v.Addresses = AddressPanel{Status: st, Addresses: list, SelectedID: pickAddress(list, v.Addresses.SelectedID)}
	})
}

func (p *CheckoutPage) setPaymentMethods(seq uint64, list []models.PaymentMethod, err error) {
	p.update(paymentsPanel, seq, func(v *CheckoutView) {
		if err != nil {
			v.PaymentMethods = PaymentPanel{Status: statusFor(err, checkoutPath, "Add a payment method to continue.", p.logger)}
			return
		}
		st := ready()
		if len(list) == 0 {
			st = Status{State: StateEmpty, Banner: "Add a payment method to continue."}
		}
		v.PaymentMethods = PaymentPanel{Status: st, PaymentMethods: list, SelectedID: pickPaymentMethod(list, v.PaymentMethods.SelectedID)}
	})
}

// LoadAddresses refreshes the address panel.
func (p *CheckoutPage) LoadAddresses(ctx context.Context) {
	seq := p.seq.Next(addressesPanel)
	list, err := p.client.Addresses(ctx)
	p.setAddresses(seq, list, err)
}

// LoadPaymentMethods refreshes the payment panel.
func (p *CheckoutPage) LoadPaymentMethods(ctx context.Context) {
	seq := p.seq.Next(paymentsPanel)
	list, err := p.client.PaymentMethods(ctx)
	p.setPaymentMethods(seq, list, err)
}

// LoadCart refreshes the cart panel.
func (p *CheckoutPage) LoadCart(ctx context.Context) {
	seq := p.seq.Next(cartPanel)
	cart, err := p.client.Cart(ctx)
	p.update(cartPanel, seq, func(v *CheckoutView) {
		if err != nil {
			v.Cart = CartPanel{Status: statusFor(err, checkoutPath, "Your cart is empty.", p.logger)}
			return
		}
		st := ready()
		if len(cart.Cart.Items) == 0 {
			st = Status{State: StateEmpty, Banner: "Your cart is empty."}
		}
		v.Cart = CartPanel{Status: st, Items: cart.Cart.Items, ItemCount: cart.ItemCount, Summary: cart.Summary}
	})
}

// AddAddress validates and saves a new address, then refreshes the panel.
// Validation failures come back as field messages and send nothing.
func (p *CheckoutPage) AddAddress(ctx context.Context, req validation.AddressRequest) CheckoutView {
	seq := p.seq.Next(addressesPanel)
	list, err := p.client.CreateAddress(ctx, req)
	if err != nil && KindOf(err) == KindValidation {
		p.update(addressesPanel, seq, func(v *CheckoutView) {
			st := statusFor(err, checkoutPath, "", p.logger)
			v.Addresses.Banner = st.Banner
			v.Addresses.Fields = st.Fields
		})
		return p.View()
	}
	p.setAddresses(seq, list, err)
	return p.View()
}

// SelectAddress chooses the delivery address. Unknown ids are ignored.
func (p *CheckoutPage) SelectAddress(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.view.Addresses.Addresses {
		if a.ID.Hex() == id {
			p.view.Addresses.SelectedID = id
			p.recompute()
			return true
		}
	}
	return false
}

// SelectPaymentMethod chooses the card. Unknown ids are ignored.
func (p *CheckoutPage) SelectPaymentMethod(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.view.PaymentMethods.PaymentMethods {
		if m.ID.Hex() == id {
			p.view.PaymentMethods.SelectedID = id
			p.recompute()
			return true
		}
	}
	return false
}

// PlaceOrder submits the order with the current selections. It returns
// ErrNotReady without a request unless every panel has loaded.
func (p *CheckoutPage) PlaceOrder(ctx context.Context) (*models.Order, error) {
	p.mu.Lock()
	if !p.view.Ready {
		p.mu.Unlock()
		return nil, ErrNotReady
	}
	addressID := p.view.Addresses.SelectedID
	paymentID := p.view.PaymentMethods.SelectedID
	p.mu.Unlock()

	order, err := p.client.PlaceOrder(ctx, addressID, paymentID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		st := statusFor(err, checkoutPath, "", p.logger)
		if st.State == StateRedirect {
			p.view.Banner = ""
			p.view.Cart.Status = st
			p.recompute()
		} else {
			p.view.Banner = st.Banner
		}
		return nil, err
	}
	p.view.Banner = ""
	p.view.Cart = CartPanel{Status: Status{State: StateEmpty, Banner: "Your cart is empty."}}
	p.recompute()
	return order, nil
}
