// mock-google serves just enough of the Google OAuth2 and Gmail APIs to run
// the mailfeed linking flow locally. Point the backend at it with
// google.endpoint, e.g.:
//
//	mock-google &                         # listens on :8080
//	mailfeed serve --google.endpoint http://localhost:8080
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talkport/mailfeed/internal/mockgoogle"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// OAuth2 endpoints
	r.GET("/o/oauth2/auth", handleConsent)
	r.POST("/token", handleToken)
	r.GET("/oauth2/v2/userinfo", requireToken, handleUserinfo)

	// Gmail endpoints
	gmail := r.Group("/gmail/v1/users/me", requireToken)
	{
		gmail.GET("/messages", handleListMessages)
		gmail.GET("/messages/:id", handleGetMessage)
	}

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting mock Google API server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// handleConsent skips the consent screen entirely and bounces straight back
// to the redirect URI with a fixed code.
func handleConsent(c *gin.Context) {
	redirect := c.Query("redirect_uri")
	if redirect == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing redirect_uri"})
		return
	}
	sep := "?"
	if strings.Contains(redirect, "?") {
		sep = "&"
	}
	target := fmt.Sprintf("%s%scode=mock-code&state=%s", redirect, sep, c.Query("state"))
	c.Redirect(http.StatusFound, target)
}

func handleToken(c *gin.Context) {
	code := c.PostForm("code")
	resp, err := mockgoogle.ExchangeCode(code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func requireToken(c *gin.Context) {
	tok := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if tok == "" || !mockgoogle.ValidToken(tok) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
		return
	}
	c.Next()
}

func handleUserinfo(c *gin.Context) {
	c.JSON(http.StatusOK, mockgoogle.GetUserinfo())
}

func handleListMessages(c *gin.Context) {
	max, err := strconv.ParseInt(c.DefaultQuery("maxResults", "100"), 10, 64)
	if err != nil || max < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maxResults"})
		return
	}
	c.JSON(http.StatusOK, mockgoogle.ListMessages(max))
}

func handleGetMessage(c *gin.Context) {
	msg, ok := mockgoogle.GetMessage(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	c.JSON(http.StatusOK, msg)
}
