package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"roastsync/ent"
)

func (s *Server) registerPriceReferences(g fiber.Router) {
	g.Get("/price-references", s.listPriceReferences)
	g.Post("/price-references", s.createPriceReference)
	g.Get("/price-references/:id", s.getPriceReference)
	g.Put("/price-references/:id", s.updatePriceReference)
	g.Delete("/price-references/:id", s.deletePriceReference)
}

func (s *Server) listPriceReferences(ctx *fiber.Ctx) error {
	references := []ent.PriceReference{}
	err := s.db.Select(&references, `select * from price_reference order by bag_size_g, id`)
	if err != nil {
		return err
	}
	return ctx.JSON(references)
}

func (s *Server) createPriceReference(ctx *fiber.Ctx) error {
	var reference ent.PriceReference
	if err := json.Unmarshal(ctx.Body(), &reference); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := s.db.QueryRowx(`
		insert into price_reference (variety_id, process, bag_size_g, price, notes)
		values ($1, $2, $3, $4, $5)
		returning *
	`, reference.VarietyID, reference.Process, reference.BagSizeG,
		math.Round(reference.Price), reference.Notes).StructScan(&reference)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(reference)
}

func (s *Server) getPriceReference(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var reference ent.PriceReference
	err = s.db.Get(&reference, `select * from price_reference where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "price reference not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(reference)
}

func (s *Server) updatePriceReference(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var reference ent.PriceReference
	if err := json.Unmarshal(ctx.Body(), &reference); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err = s.db.QueryRowx(`
		update price_reference
		set variety_id = $1, process = $2, bag_size_g = $3, price = $4, notes = $5
		where id = $6
		returning *
	`, reference.VarietyID, reference.Process, reference.BagSizeG,
		math.Round(reference.Price), reference.Notes, id).StructScan(&reference)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "price reference not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(reference)
}

func (s *Server) deletePriceReference(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from price_reference where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "price reference not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
