// Package server is the HTTP boundary over the ingestion core: the consent
// redirect, the OAuth callback, and the account list/delete endpoints the
// frontend consumes.
package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talkport/mailfeed/internal/ingest"
	"github.com/talkport/mailfeed/internal/provider"
)

const oauthState = "state-token"

// Config carries the request-independent values the handlers need. The
// redirect targets are resolved once at startup, never per request.
type Config struct {
	FrontendOrigin string
	DashboardURL   string
}

// ConsentURL builds the identity provider's consent-screen URL.
type ConsentURL interface {
	AuthCodeURL(state string) string
}

type Server struct {
	svc  *ingest.Service
	auth ConsentURL
	cfg  Config
}

func New(svc *ingest.Service, auth ConsentURL, cfg Config) *Server {
	return &Server{svc: svc, auth: auth, cfg: cfg}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(s.cfg.FrontendOrigin))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.GET("/google", s.handleGoogleLogin)
		auth.GET("/google/callback", s.handleGoogleCallback)
	}

	api := r.Group("/api")
	{
		api.GET("/emails", s.handleListAccounts)
		api.DELETE("/emails/:email", s.handleDeleteAccount)
	}

	return r
}

func (s *Server) handleGoogleLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, s.auth.AuthCodeURL(oauthState))
}

func (s *Server) handleGoogleCallback(c *gin.Context) {
	if c.Query("state") != oauthState {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	code := c.Query("code")

	email, err := s.svc.LinkAccount(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidCode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("link account: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication or mailbox access failed"})
		return
	}

	log.Printf("callback completed for %s, redirecting to dashboard", email)
	c.Redirect(http.StatusFound, s.cfg.DashboardURL)
}

func (s *Server) handleListAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.ListAccounts())
}

func (s *Server) handleDeleteAccount(c *gin.Context) {
	s.svc.UnlinkAccount(c.Param("email"))
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"accounts": s.svc.ListAccounts(),
	})
}
