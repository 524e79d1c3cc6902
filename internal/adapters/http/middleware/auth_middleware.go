package middleware

import (
	"strconv"
	"strings"

	"cafe-ledger/internal/config"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/pkg/jwt"
	"cafe-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// bearerToken extracts the token from the Authorization header
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func actorFromClaims(claims *jwt.Claims) domain.Actor {
	return domain.Actor{
		UserID: claims.UserID,
		Name:   claims.Name,
		Role:   domain.Role(claims.Role),
		CafeID: claims.CafeID,
	}
}

// AuthMiddleware requires a valid token and stores the actor in locals
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Token
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 2. Validate
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 3. Actor
		c.Locals(actorKey, actorFromClaims(claims))
		return c.Next()
	}
}

// OptionalAuth sets the actor when a valid token is present and ignores it otherwise
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if accessToken := bearerToken(c); accessToken != "" {
			if claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret); err == nil {
				c.Locals(actorKey, actorFromClaims(claims))
			}
		}
		return c.Next()
	}
}

// ActorFrom returns the authenticated actor, if any
func ActorFrom(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	return actor, ok
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if actor.Role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// SuperAdminOnly allows only SUPERADMIN
func SuperAdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleSuperAdmin)
}

// CustomerOnly allows only CUSTOMER
func CustomerOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleCustomer)
}

// CafeStaff allows STAFF, OWNER and SUPERADMIN
func CafeStaff() fiber.Handler {
	return RoleMiddleware(domain.RoleStaff, domain.RoleOwner, domain.RoleSuperAdmin)
}

// CafeScope rejects actors who do not manage the cafe named by the route param
func CafeScope(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		cafeID, err := strconv.ParseUint(c.Params(param), 10, 64)
		if err != nil || cafeID == 0 {
			return response.BadRequest(c, "Invalid cafe ID")
		}
		if !actor.CanManageCafe(uint(cafeID)) {
			return response.Forbidden(c, "You don't manage this cafe")
		}
		return c.Next()
	}
}
