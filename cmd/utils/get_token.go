package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/config"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/oauth"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

const redirectURL = "http://localhost:8090/oauth2callback"

// Prints a Gmail refresh token for GMAIL_REFRESH_TOKEN, authorised to send reminder mail
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
		log.Fatal("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
	}

	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, "", logger.NewLogger("info"))

	// Create a random state
	state := uuid.NewString()

	// Start an HTTP server to handle the OAuth callback
	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		// Check state parameter
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// Exchange the authorization code for a token
		token, err := gmailOAuth.ExchangeCode(context.Background(), redirectURL, r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Print the refresh token
		fmt.Printf("\nGMAIL_REFRESH_TOKEN=%s\n\n", token.RefreshToken)

		// Respond to the user
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	// Generate the authorization URL
	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(redirectURL, state))

	log.Fatal(http.ListenAndServe(":8090", nil))
}
