package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tryshirtonline/face-attandance/internal/auth"
	"github.com/tryshirtonline/face-attandance/internal/domain"
)

func main() {
	userID := flag.String("user-id", "", "Operator user ID (UUID, generated when empty)")
	username := flag.String("username", "operator", "Operator username")
	role := flag.String("role", string(domain.RoleSupervisor), "Operator role: superuser or supervisor")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "Signing secret (defaults to JWT_SECRET)")
	issuer := flag.String("issuer", "face-attendance", "Token issuer")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "error: signing secret is required (flag -secret or JWT_SECRET)")
		os.Exit(1)
	}

	operatorRole := domain.Role(*role)
	if operatorRole != domain.RoleSuperuser && operatorRole != domain.RoleSupervisor {
		fmt.Fprintf(os.Stderr, "error: invalid role %q\n", *role)
		os.Exit(1)
	}

	id := uuid.New()
	if *userID != "" {
		parsed, err := uuid.Parse(*userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid user-id: %v\n", err)
			os.Exit(1)
		}
		id = parsed
	}

	jwtService := auth.NewJWTService(*secret, *issuer, *ttl)
	token, err := jwtService.GenerateToken(id, *username, operatorRole)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("USER_ID=%s\nROLE=%s\nTOKEN=%s\n", id, operatorRole, token)
}
