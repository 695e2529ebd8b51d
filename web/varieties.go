package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"roastsync/ent"
)

func (s *Server) registerVarieties(g fiber.Router) {
	g.Get("/varieties", s.listVarieties)
	g.Post("/varieties", s.createVariety)
	g.Get("/varieties/:id", s.getVariety)
	g.Put("/varieties/:id", s.updateVariety)
	g.Delete("/varieties/:id", s.deleteVariety)
}

func (s *Server) listVarieties(ctx *fiber.Ctx) error {
	varieties := []ent.Variety{}
	err := s.db.Select(&varieties, `select * from variety order by name, id`)
	if err != nil {
		return err
	}
	return ctx.JSON(varieties)
}

func (s *Server) createVariety(ctx *fiber.Ctx) error {
	var variety ent.Variety
	if err := json.Unmarshal(ctx.Body(), &variety); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := s.db.QueryRowx(`
		insert into variety (name, description)
		values ($1, $2)
		returning *
	`, variety.Name, variety.Description).StructScan(&variety)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(variety)
}

func (s *Server) getVariety(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var variety ent.Variety
	err = s.db.Get(&variety, `select * from variety where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "variety not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(variety)
}

func (s *Server) updateVariety(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var variety ent.Variety
	if err := json.Unmarshal(ctx.Body(), &variety); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err = s.db.QueryRowx(`
		update variety set name = $1, description = $2
		where id = $3
		returning *
	`, variety.Name, variety.Description, id).StructScan(&variety)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "variety not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(variety)
}

func (s *Server) deleteVariety(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from variety where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "variety not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
