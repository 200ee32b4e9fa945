// Command gentoken issues an admin JWT for local development.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brewvote/server/internal/auth"
)

func main() {
	subject := flag.String("sub", "dev-admin", "user id the token identifies (admins.user_id)")
	email := flag.String("email", "dev-admin@example.com", "email claim")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: JWT_SECRET is required")
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(secret, *expiry, "").Generate(*subject, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "\ncurl -H 'Authorization: Bearer %s' http://localhost:8080/api/v1/admin/events/{id}\n", token)
}
