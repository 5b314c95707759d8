// Development helper: mints an access token for exercising the API
// locally. The shared JWT secret comes from the same env/.env the server
// reads.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arthapay/payroll-backend-go/internal/config"
	"github.com/arthapay/payroll-backend-go/internal/pkg/jwt"
)

func main() {
	userID := flag.String("user", "dev-user", "user_id claim")
	companyID := flag.String("company", "", "company_id claim (required)")
	admin := flag.Bool("admin", false, "set the is_admin claim")
	flag.Parse()

	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "usage: token -company <company-id> [-user <user-id>] [-admin]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	token, expiresAt, err := jwtService.GenerateAccessToken(*userID, *companyID, *admin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires_at:", expiresAt)
}
