package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"roastsync/ent"
)

func (s *Server) registerFarms(g fiber.Router) {
	g.Get("/farms", s.listFarms)
	g.Post("/farms", s.createFarm)
	g.Get("/farms/:id", s.getFarm)
	g.Put("/farms/:id", s.updateFarm)
	g.Delete("/farms/:id", s.deleteFarm)
}

func (s *Server) listFarms(ctx *fiber.Ctx) error {
	farms := []ent.Farm{}
	err := s.db.Select(&farms, `select * from farm order by name, id`)
	if err != nil {
		return err
	}
	return ctx.JSON(farms)
}

func (s *Server) createFarm(ctx *fiber.Ctx) error {
	var farm ent.Farm
	if err := json.Unmarshal(ctx.Body(), &farm); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := s.db.QueryRowx(`
		insert into farm (name, location, notes)
		values ($1, $2, $3)
		returning *
	`, farm.Name, farm.Location, farm.Notes).StructScan(&farm)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(farm)
}

func (s *Server) getFarm(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var farm ent.Farm
	err = s.db.Get(&farm, `select * from farm where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "farm not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(farm)
}

func (s *Server) updateFarm(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var farm ent.Farm
	if err := json.Unmarshal(ctx.Body(), &farm); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err = s.db.QueryRowx(`
		update farm set name = $1, location = $2, notes = $3
		where id = $4
		returning *
	`, farm.Name, farm.Location, farm.Notes, id).StructScan(&farm)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "farm not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(farm)
}

func (s *Server) deleteFarm(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from farm where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "farm not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
