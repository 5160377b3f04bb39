package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tryshirtonline/face-attandance/internal/auth"
	"github.com/tryshirtonline/face-attandance/internal/domain"
	"github.com/tryshirtonline/face-attandance/internal/service"
)

const (
	// LocalActor is the key to retrieve the authenticated actor from context
	LocalActor = "actor"
)

// UserRepository looks up the operator account behind a token.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// SupervisorRepository resolves the supervisor profile for supervisor users.
type SupervisorRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error)
}

// AuthDependencies contains dependencies for operator authentication.
type AuthDependencies struct {
	JWTService  *auth.JWTService
	Users       UserRepository
	Supervisors SupervisorRepository
	Logger      *slog.Logger
}

// Auth validates the bearer JWT and loads the acting operator. Supervisors
// get their profile attached; superusers act without one.
func Auth(deps AuthDependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return domain.ErrUnauthorized
		}

		claims, err := deps.JWTService.ValidateToken(token)
		if err != nil {
			deps.Logger.Warn("invalid token", slog.Any("error", err))
			return domain.ErrUnauthorized
		}

		user, err := deps.Users.GetByID(c.Context(), claims.UserID)
		if err != nil {
			// Not found and DB errors both read as 401 so tokens cannot
			// probe for account existence.
			return domain.ErrUnauthorized
		}
		if !user.IsActive {
			return domain.ErrUnauthorized
		}

		actor := &service.Actor{User: user}

		if user.Role == domain.RoleSupervisor {
			supervisor, err := deps.Supervisors.GetByUserID(c.Context(), user.ID)
			if err != nil {
				deps.Logger.Warn("supervisor profile missing",
					slog.String("user_id", user.ID.String()),
				)
				return domain.ErrUnauthorized
			}
			actor.Supervisor = supervisor
		}

		c.Locals(LocalActor, actor)

		return c.Next()
	}
}

// RequireSuperuser must be chained after Auth.
func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := GetActor(c)
		if err != nil {
			return err
		}
		if !actor.IsSuperuser() {
			return domain.ErrForbidden
		}
		return c.Next()
	}
}

// GetActor retrieves the authenticated actor from Fiber context.
func GetActor(c *fiber.Ctx) (*service.Actor, error) {
	actor, ok := c.Locals(LocalActor).(*service.Actor)
	if !ok || actor == nil {
		return nil, domain.ErrUnauthorized
	}
	return actor, nil
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
