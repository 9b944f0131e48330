package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

type Handler struct {
	db           *gorm.DB
	googleConfig *oauth2.Config
}

func NewHandler(db *gorm.DB) *Handler {
	googleConfig := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}

	return &Handler{
		db:           db,
		googleConfig: googleConfig,
	}
}

type RegisterRequest struct {
	BusinessName string `json:"business_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
	User         database.User   `json:"user"`
	Tenant       database.Tenant `json:"tenant"`
	IsNewUser    bool            `json:"is_new_user,omitempty"`
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Register creates a new store and owner user (email/password)
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser database.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	tenant := database.Tenant{
		Name:  req.BusinessName,
		Phone: req.Phone,
		Email: req.Email,
	}
	if err := h.db.Create(&tenant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business"})
		return
	}

	user := database.User{
		TenantID:     tenant.ID,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Name:         req.Name,
		Role:         "owner",
		IsActive:     true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Default invoice settings so receipts print with the store name
	h.db.Create(&database.InvoiceSettings{
		TenantID:  tenant.ID,
		StoreName: req.BusinessName,
	})

	accessToken, refreshToken, expiresIn := generateTokens(user, tenant)

	c.JSON(http.StatusCreated, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         user,
		Tenant:       tenant,
	})
}

// Login authenticates a user with email/password
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	var tenant database.Tenant
	if err := h.db.First(&tenant, user.TenantID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get business info"})
		return
	}

	accessToken, refreshToken, expiresIn := generateTokens(user, tenant)

	c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         user,
		Tenant:       tenant,
	})
}

// RefreshToken generates new tokens from a refresh token
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key-change-in-production"
	}

	token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return
	}

	var user database.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var tenant database.Tenant
	if err := h.db.First(&tenant, user.TenantID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get business info"})
		return
	}

	accessToken, refreshToken, expiresIn := generateTokens(user, tenant)

	c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         user,
		Tenant:       tenant,
	})
}

// GetMe returns the current user's info
func (h *Handler) GetMe(c *gin.Context) {
	userID, _ := c.Get("user_id")
	tenantID, _ := c.Get("tenant_id")

	var user database.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var tenant database.Tenant
	if err := h.db.Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"tenant": tenant,
	})
}

type UpdateProfileRequest struct {
	BusinessName       string   `json:"business_name"`
	Phone              string   `json:"phone"`
	Address            string   `json:"address"`
	NotificationPhones []string `json:"notification_phones"`
	Name               string   `json:"name"`
}

// UpdateProfile updates the business profile and the daily recap
// notification numbers
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	tenantID := c.GetString("tenant_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tenant database.Tenant
	if err := h.db.Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	if req.BusinessName != "" {
		tenant.Name = req.BusinessName
	}
	if req.Phone != "" {
		tenant.Phone = req.Phone
	}
	if req.Address != "" {
		tenant.Address = req.Address
	}
	if req.NotificationPhones != nil {
		tenant.NotificationPhones = pq.StringArray(req.NotificationPhones)
	}

	if err := h.db.Save(&tenant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update business"})
		return
	}

	if req.Name != "" {
		h.db.Model(&database.User{}).Where("id = ?", userID).Update("name", req.Name)
	}

	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

// GoogleLogin redirects to Google OAuth consent screen
func (h *Handler) GoogleLogin(c *gin.Context) {
	// Generate state token for CSRF protection
	state := uuid.New().String()

	c.SetCookie("oauth_state", state, 300, "/", "", false, true)

	url := h.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles the OAuth callback from Google
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	storedState, err := c.Cookie("oauth_state")
	if err != nil || state != storedState {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state parameter"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No authorization code"})
		return
	}

	token, err := h.googleConfig.Exchange(context.Background(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange token"})
		return
	}

	userInfo, err := h.getGoogleUserInfo(token.AccessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info"})
		return
	}

	var user database.User
	var tenant database.Tenant
	isNewUser := false

	err = h.db.Where("google_id = ?", userInfo.ID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		err = h.db.Where("email = ?", userInfo.Email).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			isNewUser = true

			tenant = database.Tenant{
				Name:  userInfo.Name + "'s Store",
				Email: userInfo.Email,
			}
			if err := h.db.Create(&tenant).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business"})
				return
			}

			user = database.User{
				TenantID: tenant.ID,
				Email:    userInfo.Email,
				GoogleID: userInfo.ID,
				Name:     userInfo.Name,
				Role:     "owner",
				IsActive: true,
			}
			if err := h.db.Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}

			h.db.Create(&database.InvoiceSettings{
				TenantID:  tenant.ID,
				StoreName: tenant.Name,
			})
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		} else {
			// User exists by email, link the Google account
			user.GoogleID = userInfo.ID
			h.db.Save(&user)
			h.db.First(&tenant, user.TenantID)
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	} else {
		h.db.First(&tenant, user.TenantID)
	}

	accessToken, refreshToken, _ := generateTokens(user, tenant)

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	// Tokens go through URL query parameters, required for the
	// cross-domain OAuth flow
	redirectURL := fmt.Sprintf("%s/auth/callback?access_token=%s&refresh_token=%s&is_new_user=%t",
		frontendURL, accessToken, refreshToken, isNewUser)
	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

func (h *Handler) getGoogleUserInfo(accessToken string) (*GoogleUserInfo, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, err
	}

	return &userInfo, nil
}

func generateTokens(user database.User, tenant database.Tenant) (string, string, int64) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key-change-in-production"
	}

	expiresIn := int64(15 * 60) // 15 minutes

	accessClaims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"tenant_id": tenant.ID.String(),
		"email":     user.Email,
		"role":      user.Role,
		"exp":       time.Now().Add(15 * time.Minute).Unix(),
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, _ := accessToken.SignedString([]byte(secret))

	// Refresh token lives 7 days
	refreshClaims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, _ := refreshToken.SignedString([]byte(secret))

	return accessTokenString, refreshTokenString, expiresIn
}
