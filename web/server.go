// Package web exposes the REST API: one handler file per resource, all
// reading and writing through sqlx and validating through the accounting
// core before any write.
package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"roastsync/accounting"
	"roastsync/auth"
	"roastsync/config"
	"roastsync/ent"
)

type Server struct {
	db  *sqlx.DB
	cfg config.Config
}

func New(db *sqlx.DB, cfg config.Config) *Server {
	return &Server{db: db, cfg: cfg}
}

// Register mounts every route under /api/v1. Everything except login sits
// behind the bearer-token middleware; user administration additionally
// requires a superuser.
func (s *Server) Register(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/auth/login", s.login)

	authed := api.Group("", s.requireUser)
	authed.Get("/auth/me", s.me)

	s.registerFarms(authed)
	s.registerVarieties(authed)
	s.registerCustomers(authed)
	s.registerLots(authed)
	s.registerRoasts(authed)
	s.registerInventory(authed)
	s.registerSales(authed)
	s.registerPriceReferences(authed)
	s.registerExpenses(authed)
	s.registerDashboard(authed)

	admin := authed.Group("", s.requireSuperuser)
	s.registerUsers(admin)
}

const userKey = "user"

func (s *Server) requireUser(ctx *fiber.Ctx) error {
	token, ok := bearerToken(ctx.Get(fiber.HeaderAuthorization))
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
	}

	email, err := auth.ParseToken([]byte(s.cfg.SecretKey), token)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "could not validate credentials")
	}

	var user ent.User
	err = s.db.Get(&user, `select * from app_user where email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusUnauthorized, "user not found")
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		return fiber.NewError(http.StatusUnauthorized, "inactive user")
	}

	ctx.Locals(userKey, user)
	return ctx.Next()
}

func (s *Server) requireSuperuser(ctx *fiber.Ctx) error {
	if !currentUser(ctx).IsSuperuser {
		return fiber.NewError(http.StatusForbidden, "insufficient privileges")
	}
	return ctx.Next()
}

func currentUser(ctx *fiber.Ctx) ent.User {
	user, _ := ctx.Locals(userKey).(ent.User)
	return user
}

func bearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func parseID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// rejected writes the 400 response carrying the structured rejections.
func rejected(ctx *fiber.Ctx, rejections accounting.Rejections) error {
	return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
		"rejections": rejections,
	})
}
