package controllers

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/utils"
)

type memUsers struct {
	mu    sync.Mutex
	users []*models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = primitive.NewObjectID()
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Verify(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.VerificationToken == token && !u.IsVerified {
			u.IsVerified = true
			u.VerificationToken = ""
			return nil
		}
	}
	return repository.ErrNotFound
}

func TestRegisterVerifyLogin(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	users := &memUsers{}
	mailer := &nopMailer{}
	uc := NewUserController(testCommon(), users, utils.NewEmailServiceWithMailer(mailer, "http://shop.test", zap.NewNop()))

	register := map[string]string{"name": "Jane", "email": "Jane@Example.com", "password": "correct horse"}
	rec := serve(t, "/register", http.MethodPost, "/register", register, nil, uc.Register)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.sent))
	}
	if rec := serve(t, "/register", http.MethodPost, "/register", register, nil, uc.Register); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: %d", rec.Code)
	}

	login := map[string]string{"email": "jane@example.com", "password": "correct horse"}
	if rec := serve(t, "/login", http.MethodPost, "/login", login, nil, uc.Login); rec.Code != http.StatusUnauthorized {
		t.Fatalf("login before verify: %d", rec.Code)
	}

	token := users.users[0].VerificationToken
	rec = serve(t, "/verify", http.MethodGet, "/verify?token="+token, nil, nil, uc.VerifyEmail)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, "/login", http.MethodPost, "/login", login, nil, uc.Login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	claims, err := utils.ParseJWT(body["token"].(string))
	if err != nil {
		t.Fatal(err)
	}
	if claims.Email != "jane@example.com" || claims.Role != models.RoleUser {
		t.Errorf("claims = %+v", claims)
	}
	if _, leaked := body["user"].(map[string]interface{})["password"]; leaked {
		t.Error("password hash in response")
	}

	rec = serve(t, "/profile", http.MethodGet, "/profile", nil, claims, uc.GetProfile)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: %d %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["user"].(map[string]interface{})["name"]; got != "Jane" {
		t.Errorf("profile name = %v", got)
	}

	bad := map[string]string{"email": "jane@example.com", "password": "wrong"}
	if rec := serve(t, "/login", http.MethodPost, "/login", bad, nil, uc.Login); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", rec.Code)
	}
}

func TestAddReview(t *testing.T) {
	lamp := models.Product{ID: primitive.NewObjectID(), Name: "Lamp", Price: 20}
	products := newMemProducts(lamp)
	pc := NewProductController(testCommon(), products, &memUsers{})
	claims := testClaims(models.RoleUser)

	for _, rating := range []int{5, 4} {
		rec := serve(t, "/products/{id}/reviews", http.MethodPost, "/products/"+lamp.ID.Hex()+"/reviews",
			map[string]interface{}{"rating": rating, "comment": "ok"}, claims, pc.AddReview)
		if rec.Code != http.StatusCreated {
			t.Fatalf("review: %d %s", rec.Code, rec.Body.String())
		}
	}
	p, _ := products.Get(context.Background(), lamp.ID)
	if p.Rating != 4.5 || p.ReviewCount != 2 {
		t.Errorf("rating = %v count = %d", p.Rating, p.ReviewCount)
	}

	rec := serve(t, "/products/{id}/reviews", http.MethodPost, "/products/"+lamp.ID.Hex()+"/reviews",
		map[string]interface{}{"rating": 6}, claims, pc.AddReview)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("rating 6: %d", rec.Code)
	}
}
