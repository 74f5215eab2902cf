package storefront

import (
	"sync"

	"go-storefront/models"
)

// Session is the typed per-user store shared by the client and the page
// controllers. It holds the auth token, the signed-in user and the last
// cart snapshot.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
	cart  *CartView
}

// NewSession returns an empty, signed-out session.
func NewSession() *Session {
	return &Session{}
}

// SignIn records a token and the user it belongs to.
func (s *Session) SignIn(token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

// SignOut forgets the token, user and cart.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.cart = nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Cart returns the last cart snapshot.
func (s *Session) Cart() (CartView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return CartView{}, false
	}
	return *s.cart, true
}

// SetCart replaces the cart snapshot. Writes are last-write-wins.
func (s *Session) SetCart(c CartView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = &c
}

// ClearCart drops the cart snapshot.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}
