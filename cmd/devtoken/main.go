// Command devtoken mints access tokens for local testing.
//
//	go run ./cmd/devtoken -role STAFF -cafe 1 -user 42
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"cafe-ledger/internal/config"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/pkg/jwt"
	"cafe-ledger/internal/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	userID := flag.Uint("user", 1, "user id")
	name := flag.String("name", "Dev User", "display name")
	role := flag.String("role", string(domain.RoleCustomer), "CUSTOMER, STAFF, OWNER or SUPERADMIN")
	cafeID := flag.Uint("cafe", 0, "cafe id for STAFF and OWNER")
	minutes := flag.Int("minutes", 0, "lifetime in minutes (defaults to ACCESS_TOKEN_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Setup("devtoken", cfg.AppMode, "warn")

	r := domain.Role(strings.ToUpper(*role))
	switch r {
	case domain.RoleCustomer, domain.RoleSuperAdmin:
	case domain.RoleStaff, domain.RoleOwner:
		if *cafeID == 0 {
			log.Fatal().Str("role", string(r)).Msg("-cafe is required for this role")
		}
	default:
		log.Fatal().Str("role", *role).Msg("unknown role")
	}

	lifetime := cfg.JWT.AccessTokenMins
	if *minutes > 0 {
		lifetime = *minutes
	}

	token, err := jwt.GenerateAccessToken(jwt.Identity{
		UserID: *userID,
		Name:   *name,
		Role:   string(r),
		CafeID: *cafeID,
	}, cfg.JWT.Secret, lifetime)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}

	fmt.Println(token)
}
