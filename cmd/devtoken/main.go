// Command devtoken issues an access token for an existing user. Registration
// and login live outside this service, so this is how local clients get a
// bearer token.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"rentshare-backend/internal/app"
	"rentshare-backend/internal/config"
	"rentshare-backend/internal/logger"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	userID := flag.Int("user-id", 0, "ID of the user the token is issued for")
	flag.Parse()

	if *userID <= 0 {
		log.Fatalf("-user-id is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize("warn", cfg.Log.Format)

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	user, err := application.Users.GetUser(ctx, int32(*userID))
	if err != nil {
		log.Fatalf("Failed to load user %d: %v", *userID, err)
	}
	token, err := application.TokenManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
