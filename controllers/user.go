package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/utils"
	"go-storefront/validation"
)

// UserController handles user-related requests
type UserController struct {
	Common
	Users        repository.Users
	EmailService *utils.EmailService
}

// NewUserController creates a new UserController with EmailService
func NewUserController(common Common, users repository.Users, emailService *utils.EmailService) *UserController {
	return &UserController{Common: common, Users: users, EmailService: emailService}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req validation.RegisterRequest
	if !uc.decodeAndValidate(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := uc.context(r)
	defer cancel()

	// Check if user already exists
	_, err := uc.Users.FindByEmail(ctx, email)
	if err == nil {
		fail(w, http.StatusBadRequest, "User already exists")
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		uc.storeError(w, err, "", "find user")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	// the verification token is a signed token without a user id
	verificationToken, err := utils.GenerateJWT("", email, models.RoleUser)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Error generating verification token")
		return
	}

	user := &models.User{
		Name:              req.Name,
		Email:             email,
		Password:          string(hashedPassword),
		Role:              models.RoleUser,
		VerificationToken: verificationToken,
	}
	if err := uc.Users.Create(ctx, user); err != nil {
		uc.storeError(w, err, "", "create user")
		return
	}

	if err := uc.EmailService.SendVerificationEmail(user.Email, verificationToken); err != nil {
		uc.Logger.Error("send verification email", zap.String("email", user.Email), zap.Error(err))
		fail(w, http.StatusInternalServerError, "Error sending verification email")
		return
	}

	respond(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		fail(w, http.StatusBadRequest, "Verification token missing")
		return
	}
	if _, err := utils.ParseJWT(token); err != nil {
		fail(w, http.StatusBadRequest, "Invalid token")
		return
	}

	ctx, cancel := uc.context(r)
	defer cancel()
	if err := uc.Users.Verify(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(w, http.StatusBadRequest, "User not found or already verified")
			return
		}
		uc.storeError(w, err, "", "verify user")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"message": "Email verified successfully. You can now log in."})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		fail(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := uc.context(r)
	defer cancel()
	user, err := uc.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		uc.storeError(w, err, "", "find user")
		return
	}

	if !user.IsVerified {
		fail(w, http.StatusUnauthorized, "Email not verified")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	user.Password = ""
	respond(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := uc.context(r)
	defer cancel()
	user, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		uc.storeError(w, err, "User not found", "find user")
		return
	}

	user.Password = ""
	user.VerificationToken = ""
	respond(w, http.StatusOK, map[string]interface{}{"user": user})
}
