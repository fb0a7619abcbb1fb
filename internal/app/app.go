// Package app provides application-level wiring for the manager-links
// service.
package app

import (
	"database/sql"
	"log/slog"

	"manager-links/internal/config"
	"manager-links/internal/db/repository"
	"manager-links/internal/service"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired services the API handler needs.
type App struct {
	Users *service.UserService
	Links *service.LinkService
}

// New wires repositories and services from the provided deps. Link writes
// go through the write pool; the read pool serves the list endpoints.
func New(deps Deps) *App {
	userRepo := repository.NewUserRepo(deps.WriteDB)
	linkRepo := repository.NewManagerLinkRepo(deps.WriteDB, deps.ReadDB)

	return &App{
		Users: service.NewUserService(userRepo, linkRepo),
		Links: service.NewLinkService(userRepo, linkRepo),
	}
}
