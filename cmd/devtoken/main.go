// Command devtoken mints a bearer token for local testing against a
// server that shares the same JWT settings.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	jwttoken "rentwise/internal/jwt_token"
	"rentwise/internal/platform/config"
	id "rentwise/pkg/domain"
)

func main() {
	user := flag.String("user", "", "user id (random when empty)")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	userID := id.UserID(uuid.New())
	if *user != "" {
		userID, err = id.ParseUserID(*user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -user: %v\n", err)
			os.Exit(2)
		}
	}

	svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	token, err := svc.GenerateAccessToken(userID, cfg.Auth.TokenTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "user_id=%s\n", userID)
	fmt.Println(token)
}
