package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"go-storefront/orderview"
)

const (
	trackPanel = "track"
	trackPath  = "/track"
)

// NoOrderFoundMessage is shown when a lookup matches nothing.
const NoOrderFoundMessage = "No order found with that order number and email."

// TrackView is the view-model of the public tracking page.
type TrackView struct {
	Status
	OrderNumber string             `json:"orderNumber,omitempty"`
	OrderStatus string             `json:"orderStatus,omitempty"`
	Timeline    orderview.Timeline `json:"timeline"`
}

// TrackPage drives the order tracking form.
type TrackPage struct {
	client *Client
	seq    *Sequencer
	format orderview.NumberFormat
	logger *zap.Logger

	mu   sync.Mutex
	view TrackView
}

// NewTrackPage creates the page controller.
func NewTrackPage(client *Client, format orderview.NumberFormat, logger *zap.Logger) *TrackPage {
	return &TrackPage{client: client, seq: NewSequencer(), format: format, logger: logger}
}

// View returns the current view-model.
func (p *TrackPage) View() TrackView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Track validates the form and looks the order up. Invalid input is
// reported inline without a request.
func (p *TrackPage) Track(ctx context.Context, orderNumber, email string) TrackView {
	seq := p.seq.Next(trackPanel)

	var v TrackView
	order, err := p.client.TrackOrder(ctx, orderNumber, email)
	if err != nil {
		v = TrackView{Status: statusFor(err, trackPath, NoOrderFoundMessage, p.logger)}
	} else {
		number := order.OrderNumber
		if number == "" && !order.ID.IsZero() {
			number = order.ID.Hex()
		}
		v = TrackView{
			Status:      ready(),
			OrderNumber: orderview.FormatOrderNumber(number, p.format),
			OrderStatus: order.Status,
			Timeline:    orderview.DeriveTimeline(order.Tracking),
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq.Current(trackPanel, seq) {
		p.view = v
	}
	return p.view
}
