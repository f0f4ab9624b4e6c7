package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Conversa-api/internal/application/auth"
	"github.com/jhoicas/Conversa-api/internal/application/usecase"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC   *usecase.CompanyUseCase
	InstanceUC  *usecase.InstanceUseCase
	PurgeUC     *usecase.PurgeUseCase
	AuthUC      *auth.AuthUseCase
	CompanyRepo repository.CompanyRepository
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Companies: listar, crear, purgar y seed son de operadores; leer y
	// actualizar validan tenancy dentro del caso de uso.
	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.PurgeUC)
	companies.Get("/", RequireOperator(), companyHandler.List)
	companies.Post("/", RequireOperator(), companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Delete("/:id", RequireOperator(), companyHandler.Delete)
	companies.Post("/:id/seed", RequireOperator(), companyHandler.Seed)

	// Instances (anidadas bajo la empresa)
	instanceHandler := NewInstanceHandler(deps.InstanceUC, deps.CompanyRepo)
	companies.Get("/:id/instances", instanceHandler.List)
	companies.Put("/:id/instances/:instanceID", instanceHandler.Update)
}
