package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/picstream/backend/internal/models"
	"github.com/picstream/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

// AuthHandler handles registration, login and token issuance
type AuthHandler struct {
	store        *repositories.Store
	firebaseAuth *auth.Client
	jwtSecret    string
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in
// which case the Firebase exchange route is not registered.
func NewAuthHandler(store *repositories.Store, firebaseAuth *auth.Client, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		store:        store,
		firebaseAuth: firebaseAuth,
		jwtSecret:    jwtSecret,
		validate:     validator.New(),
		logger:       logger,
	}
}

// RegisterAuthRoutes registers the unauthenticated auth routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	if h.firebaseAuth != nil {
		g.POST("/firebase", h.FirebaseLogin)
	}
}

// RegisterMeRoute registers the authenticated identity route
func (h *AuthHandler) RegisterMeRoute(g *echo.Group) {
	g.GET("/auth/me", h.Me)
}

// Register creates an account and returns a token plus the created user
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are required")
	}

	ctx := c.Request().Context()
	if _, err := h.store.Users.GetByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}
	if _, err := h.store.Users.GetByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		Password:       string(hashed),
		ProfilePicture: models.DefaultProfilePicture,
	}
	if err := h.store.Users.Create(ctx, user); err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	token, err := h.generateJWT(user.ID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  buildUserView(ctx, h.store, user),
	})
}

// Login authenticates by email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	ctx := c.Request().Context()
	user, err := h.store.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same message whether the email or the password is wrong.
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}

	token, err := h.generateJWT(user.ID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  buildUserView(ctx, h.store, user),
	})
}

// Me returns the authenticated user's own record
func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.store.Users.GetByID(ctx, getUserIDFromContext(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("me lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, buildUserView(ctx, h.store, user))
}

// FirebaseLoginRequest defines the request body for the Firebase exchange
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token, finds or creates the matching
// local account, and issues a local JWT for it.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "idToken is required")
	}

	idToken, err := h.firebaseAuth.VerifyIDToken(context.Background(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	email, _ := idToken.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase token carries no email")
	}

	ctx := c.Request().Context()
	user, err := h.store.Users.GetByEmail(ctx, email)
	if err == repositories.ErrNotFound {
		user = &models.User{
			Username:       h.availableUsername(ctx, email, idToken),
			Email:          email,
			ProfilePicture: models.DefaultProfilePicture,
		}
		if createErr := h.store.Users.Create(ctx, user); createErr != nil {
			h.logger.Error("create firebase user failed", zap.Error(createErr))
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}
	} else if err != nil {
		h.logger.Error("firebase user lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	token, err := h.generateJWT(user.ID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  buildUserView(ctx, h.store, user),
	})
}

func (h *AuthHandler) availableUsername(ctx context.Context, email string, idToken *auth.Token) string {
	base, _ := idToken.Claims["name"].(string)
	base = strings.ReplaceAll(strings.TrimSpace(base), " ", "")
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	name := base
	for i := 1; ; i++ {
		if _, err := h.store.Users.GetByUsername(ctx, name); err != nil {
			return name
		}
		name = base + strconv.Itoa(i)
	}
}

// generateJWT issues a token bound to a user id, expiring in 7 days
func (h *AuthHandler) generateJWT(userID string) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
