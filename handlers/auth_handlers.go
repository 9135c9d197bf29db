// api/handlers/auth_handlers.go
package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"cardlink/api/models"
	"cardlink/api/store"
	"cardlink/api/utils"
)

type AuthHandlers struct {
	ClientStore *store.ClientStore
}

func NewAuthHandlers(clientStore *store.ClientStore) *AuthHandlers {
	return &AuthHandlers{ClientStore: clientStore}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// 1. Check if the email is already registered.
	_, err := h.ClientStore.GetClientByEmail(c.Request.Context(), req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Client with this email already exists"})
		return
	}
	// A different DB error than "not found" is a 500.
	if err.Error() != fmt.Sprintf("client with email '%s' not found", req.Email) {
		log.Printf("ERROR: Database error during signup email check: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check client existence"})
		return
	}

	// 2. Hash the password.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: Failed to hash password for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	// 3. Store the new client account.
	client, err := h.ClientStore.CreateClient(c.Request.Context(), req.Email, hashedPassword)
	if err != nil {
		log.Printf("ERROR: Failed to create client in DB for email %s: %v", req.Email, err)
		if err.Error() == fmt.Sprintf("client with email '%s' already exists", req.Email) {
			c.JSON(http.StatusConflict, gin.H{"error": "Client with this email already exists"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register client"})
		}
		return
	}

	log.Printf("Client registered successfully: ID=%d, Email=%s", client.ID, client.Email)
	c.JSON(http.StatusCreated, gin.H{"message": "Client registered successfully", "client_email": client.Email})
}

// Login handles client authentication and JWT token creation.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	client, err := h.ClientStore.GetClientByEmail(c.Request.Context(), req.Email)
	if err != nil {
		log.Printf("Login failed for email %s: %v", req.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	err = bcrypt.CompareHashAndPassword(client.HashedPassword, []byte(req.Password))
	if err != nil {
		log.Printf("Login failed for email %s: password mismatch", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := utils.GenerateJWT(client)
	if err != nil {
		log.Printf("ERROR: Failed to generate JWT for client %d: %v", client.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(
		"jwt_token",
		tokenString,
		int(24*time.Hour/time.Second),
		"/",
		"",
		false,
		true,
	)

	log.Printf("Client logged in: ID=%d, Email=%s. JWT issued.", client.ID, client.Email)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"client_email": client.Email,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	// Expire the JWT cookie immediately.
	c.SetCookie(
		"jwt_token",
		"",
		-1,
		"/",
		"",
		false,
		true,
	)

	log.Println("Client logged out (JWT cookie cleared).")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
