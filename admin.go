// admin.go - privacy-conscious admin area for the guestbook
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	adminCookie     = "admin_token"
	adminCookiePath = "/admin"
	adminIssuer     = "portfolio-admin"
	adminSessionTTL = 24 * time.Hour
	recentEntries   = 10
	adminUserKey    = "admin_user"
)

type AdminStats struct {
	TotalEntries    int               `json:"total_entries"`
	SignedEntries   int               `json:"signed_entries"`
	EntriesToday    int               `json:"entries_today"`
	EntriesThisWeek int               `json:"entries_this_week"`
	RecentEntries   []*GuestbookEntry `json:"recent_entries"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("generate random token: %v", err))
	}
	return hex.EncodeToString(b)
}

// ipHasher hashes client addresses with a per-process salt so logs can
// correlate requests without storing raw IPs.
type ipHasher struct {
	salt string
}

func newIPHasher() *ipHasher {
	return &ipHasher{salt: generateToken()}
}

func (h *ipHasher) Hash(ip string) string {
	sum := sha256.Sum256([]byte(ip + h.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// adminAuth issues and checks the HS256 session tokens kept in the admin cookie.
type adminAuth struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func newAdminAuth(cfg *Config, log zerolog.Logger) *adminAuth {
	secret := cfg.AdminSecret
	if secret == "" {
		secret = generateToken()
		log.Info().Msg("ADMIN_SECRET not set, admin sessions end when the process restarts")
	}
	return &adminAuth{
		secret: []byte(secret),
		secure: cfg.IsProduction(),
		now:    time.Now,
	}
}

func (a *adminAuth) issue(user *User) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    adminIssuer,
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(adminSessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// verify returns the user id carried by a valid, unexpired token.
func (a *adminAuth) verify(token string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", claims.Subject, err)
	}
	return id, nil
}

// adminAuthMiddleware rejects requests without a valid session for an
// existing user.
func (s *server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := s.admin.verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := s.store.GetUser(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			s.internalError(c, err, "Failed to load admin user")
			c.Abort()
			return
		}
		c.Set(adminUserKey, user)
		c.Next()
	}
}

// computeAdminStats summarizes entries, which must be ordered newest first.
func computeAdminStats(entries []*GuestbookEntry, now time.Time) *AdminStats {
	stats := &AdminStats{
		TotalEntries:  len(entries),
		RecentEntries: []*GuestbookEntry{},
		GeneratedAt:   now,
	}
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for i, e := range entries {
		if e.Signature != nil {
			stats.SignedEntries++
		}
		if !e.CreatedAt.Before(startOfDay) {
			stats.EntriesToday++
		}
		if !e.CreatedAt.Before(weekAgo) {
			stats.EntriesThisWeek++
		}
		if i < recentEntries {
			stats.RecentEntries = append(stats.RecentEntries, e)
		}
	}
	return stats
}

func (s *server) adminStats(c *gin.Context) (*AdminStats, bool) {
	entries, err := s.store.ListEntries(c.Request.Context())
	if err != nil {
		s.internalError(c, err, "Failed to load statistics")
		return nil, false
	}
	return computeAdminStats(entries, time.Now().UTC()), true
}

// setupAdminRoutes registers the admin endpoints. Nothing is registered when
// admin login is disabled.
func (s *server) setupAdminRoutes(r *gin.Engine) {
	if s.admin == nil {
		return
	}

	r.POST("/admin/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
			return
		}

		user, err := authenticate(c.Request.Context(), s.store, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, errInvalidCredentials) {
				s.log.Warn().Str("visitor", s.privacy.Hash(c.ClientIP())).Msg("failed admin login attempt")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			s.internalError(c, err, "Login failed")
			return
		}

		token, err := s.admin.issue(user)
		if err != nil {
			s.internalError(c, err, "Login failed")
			return
		}
		c.SetCookie(adminCookie, token, int(adminSessionTTL.Seconds()), adminCookiePath, "", s.admin.secure, true)
		s.log.Info().Str("visitor", s.privacy.Hash(c.ClientIP())).Msg("admin login successful")
		c.JSON(http.StatusOK, gin.H{"message": "Logged in", "username": user.Username})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, adminCookiePath, "", s.admin.secure, true)
		s.log.Info().Str("visitor", s.privacy.Hash(c.ClientIP())).Msg("admin logout")
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(s.adminAuthMiddleware())

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, ok := s.adminStats(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	// Admin statistics export (for backups or analysis)
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, ok := s.adminStats(c)
		if !ok {
			return
		}
		c.Header("Content-Disposition", "attachment; filename=guestbook-stats.json")
		user := c.MustGet(adminUserKey).(*User)
		s.log.Info().Str("username", user.Username).Msg("admin stats exported")
		c.JSON(http.StatusOK, stats)
	})
}
