package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"roastsync/auth"
	"roastsync/ent"
)

func (s *Server) registerUsers(g fiber.Router) {
	g.Get("/users", s.listUsers)
	g.Post("/users", s.createUser)
	g.Put("/users/:id", s.updateUser)
	g.Delete("/users/:id", s.deleteUser)
}

// userPayload carries the plaintext password alongside the user fields; the
// hash never leaves the server.
type userPayload struct {
	ent.User
	Password string `json:"password"`
}

func (s *Server) listUsers(ctx *fiber.Ctx) error {
	users := []ent.User{}
	err := s.db.Select(&users, `select * from app_user order by id`)
	if err != nil {
		return err
	}
	return ctx.JSON(users)
}

func (s *Server) createUser(ctx *fiber.Ctx) error {
	var payload userPayload
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if payload.Email == "" || payload.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password are required")
	}

	var exists bool
	err := s.db.Get(&exists, `select exists (select 1 from app_user where email = $1)`, payload.Email)
	if err != nil {
		return err
	}
	if exists {
		return fiber.NewError(http.StatusBadRequest, "user already exists")
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return err
	}

	var user ent.User
	err = s.db.QueryRowx(`
		insert into app_user (email, full_name, is_active, is_superuser, hashed_password)
		values ($1, $2, $3, $4, $5)
		returning *
	`, payload.Email, payload.FullName, payload.IsActive, payload.IsSuperuser, hash).StructScan(&user)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(user)
}

func (s *Server) updateUser(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var existing ent.User
	err = s.db.Get(&existing, `select * from app_user where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return err
	}

	var payload userPayload
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	hash := existing.HashedPassword
	if payload.Password != "" {
		hash, err = auth.HashPassword(payload.Password)
		if err != nil {
			return err
		}
	}

	// email is immutable; it is the token subject
	var user ent.User
	err = s.db.QueryRowx(`
		update app_user
		set full_name = $1, is_active = $2, is_superuser = $3, hashed_password = $4
		where id = $5
		returning *
	`, payload.FullName, payload.IsActive, payload.IsSuperuser, hash, id).StructScan(&user)
	if err != nil {
		return err
	}

	return ctx.JSON(user)
}

func (s *Server) deleteUser(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from app_user where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
