package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"go-storefront/models"
	"go-storefront/orderview"
)

const orderPanel = "order"

// ItemView is one rendered order line.
type ItemView struct {
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

// OrderView is the view-model of the order details page.
type OrderView struct {
	Status
	OrderID         string                  `json:"orderId,omitempty"`
	OrderNumber     string                  `json:"orderNumber,omitempty"`
	OrderStatus     string                  `json:"orderStatus,omitempty"`
	Items           []ItemView              `json:"items,omitempty"`
	ShippingAddress models.ShippingAddress  `json:"shippingAddress"`
	Payment         string                  `json:"payment,omitempty"`
	Summary         []orderview.SummaryLine `json:"summary,omitempty"`
	Timeline        orderview.Timeline      `json:"timeline"`
	CanCancel       bool                    `json:"canCancel"`
}

// NewOrderView projects an order for display.
func NewOrderView(o *models.Order, format orderview.NumberFormat) OrderView {
	items := make([]ItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemView{
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: orderview.FormatAmount(it.Price),
			LineTotal: orderview.FormatAmount(it.Price * float64(it.Quantity)),
		})
	}
	number := o.OrderNumber
	if number == "" && !o.ID.IsZero() {
		number = o.ID.Hex()
	}
	payment := o.PaymentMethod
	if o.PaymentLast4 != "" {
		payment += " ending in " + o.PaymentLast4
	}
	return OrderView{
		Status:          ready(),
		OrderID:         o.ID.Hex(),
		OrderNumber:     orderview.FormatOrderNumber(number, format),
		OrderStatus:     o.Status,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		Payment:         payment,
		Summary:         orderview.SummarizeOrder(o).Lines(),
		Timeline:        orderview.DeriveTimeline(o.Tracking),
		CanCancel:       o.CanCancel(),
	}
}

// OrderDetailsPage drives the order details page: load, cancel, reload.
type OrderDetailsPage struct {
	client *Client
	seq    *Sequencer
	format orderview.NumberFormat
	logger *zap.Logger

	mu   sync.Mutex
	view OrderView
}

// NewOrderDetailsPage creates the page controller.
func NewOrderDetailsPage(client *Client, format orderview.NumberFormat, logger *zap.Logger) *OrderDetailsPage {
	return &OrderDetailsPage{
		client: client,
		seq:    NewSequencer(),
		format: format,
		logger: logger,
		view:   OrderView{Status: Status{State: StateLoading}},
	}
}

// View returns the current view-model.
func (p *OrderDetailsPage) View() OrderView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

func (p *OrderDetailsPage) apply(seq uint64, v OrderView) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.seq.Current(orderPanel, seq) {
		return false
	}
	p.view = v
	return true
}

func (p *OrderDetailsPage) fetch(ctx context.Context, id string) OrderView {
	order, err := p.client.GetOrder(ctx, id)
	if err != nil {
		return OrderView{Status: statusFor(err, "/orders/"+id, "Order not found", p.logger), OrderID: id}
	}
	return NewOrderView(order, p.format)
}

// Load fetches the order and replaces the view unless a newer load or
// cancel was dispatched meanwhile. It returns the current view.
func (p *OrderDetailsPage) Load(ctx context.Context, id string) OrderView {
	seq := p.seq.Next(orderPanel)
	v := p.fetch(ctx, id)
	p.apply(seq, v)
	return p.View()
}

// Cancel cancels the order and reloads it. A rejected cancel keeps the
// order on screen with the server's message in the banner.
func (p *OrderDetailsPage) Cancel(ctx context.Context, id string) OrderView {
	seq := p.seq.Next(orderPanel)
	msg, err := p.client.CancelOrder(ctx, id)
	if err != nil {
		st := statusFor(err, "/orders/"+id, "Order not found", p.logger)
		p.mu.Lock()
		if p.seq.Current(orderPanel, seq) {
			if st.State == StateError && p.view.State == StateReady {
				// keep the order visible under the banner
				p.view.Banner = st.Banner
			} else {
				p.view = OrderView{Status: st, OrderID: id}
			}
		}
		p.mu.Unlock()
		return p.View()
	}

	v := p.fetch(ctx, id)
	if v.State == StateReady {
		v.Banner = messageOr(msg, "Order cancelled")
	}
	p.apply(seq, v)
	return p.View()
}
