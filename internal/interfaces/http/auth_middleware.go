package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Conversa-api/internal/application/dto"
	"github.com/jhoicas/Conversa-api/internal/application/usecase"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/pkg/jwt"
)

// Locals keys para la identidad del caller en Fiber.
const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
	LocalRole      = "role"
	LocalEmail     = "email"
)

// AuthMiddleware valida el Bearer Token JWT y deja la identidad en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalCompanyID, claims.CompanyID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// RequireOperator autoriza solo a operadores de plataforma.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetRole(c) != entity.RoleSuperadmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "requiere operador de plataforma"})
		}
		return c.Next()
	}
}

// GetActor arma el Actor del caso de uso desde los locals.
func GetActor(c *fiber.Ctx) usecase.Actor {
	return usecase.Actor{
		UserID:    getInt64Local(c, LocalUserID),
		CompanyID: getInt64Local(c, LocalCompanyID),
		Role:      GetRole(c),
		Email:     getStringLocal(c, LocalEmail),
	}
}

// GetRole devuelve el rol del caller (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	return getStringLocal(c, LocalRole)
}

// GetCompanyID devuelve la empresa del caller (0 para operadores).
func GetCompanyID(c *fiber.Ctx) int64 {
	return getInt64Local(c, LocalCompanyID)
}

func getStringLocal(c *fiber.Ctx, key string) string {
	v, _ := c.Locals(key).(string)
	return v
}

func getInt64Local(c *fiber.Ctx, key string) int64 {
	v, _ := c.Locals(key).(int64)
	return v
}
