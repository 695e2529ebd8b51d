package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"roastsync/auth"
	"roastsync/ent"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	var user ent.User
	err := s.db.Get(&user, `select * from app_user where email = $1`, req.Email)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !auth.CheckPassword(user.HashedPassword, req.Password)) {
		return fiber.NewError(http.StatusUnauthorized, "incorrect email or password")
	}
	if err != nil {
		return err
	}

	token, err := auth.NewToken([]byte(s.cfg.SecretKey), user.Email, s.cfg.TokenTTL, time.Now())
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) me(ctx *fiber.Ctx) error {
	return ctx.JSON(currentUser(ctx))
}
