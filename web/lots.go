package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"roastsync/ent"
)

func (s *Server) registerLots(g fiber.Router) {
	g.Get("/lots", s.listLots)
	g.Post("/lots", s.createLot)
	g.Get("/lots/:id", s.getLot)
	g.Put("/lots/:id", s.updateLot)
	g.Delete("/lots/:id", s.deleteLot)
}

func (s *Server) listLots(ctx *fiber.Ctx) error {
	lots := []ent.CoffeeLot{}
	err := s.db.Select(&lots, `select * from coffee_lot order by purchase_date desc, id desc`)
	if err != nil {
		return err
	}
	return ctx.JSON(lots)
}

func (s *Server) createLot(ctx *fiber.Ctx) error {
	var lot ent.CoffeeLot
	if err := json.Unmarshal(ctx.Body(), &lot); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := s.db.QueryRowx(`
		insert into coffee_lot (farm_id, variety_id, process, purchase_date,
			green_weight_g, price_per_g, moisture_level, notes)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning *
	`, lot.FarmID, lot.VarietyID, lot.Process, lot.PurchaseDate,
		lot.GreenWeightG, lot.PricePerG, lot.MoistureLevel, lot.Notes).StructScan(&lot)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(lot)
}

func (s *Server) getLot(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var lot ent.CoffeeLot
	err = s.db.Get(&lot, `select * from coffee_lot where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "lot not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(lot)
}

func (s *Server) updateLot(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var lot ent.CoffeeLot
	if err := json.Unmarshal(ctx.Body(), &lot); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err = s.db.QueryRowx(`
		update coffee_lot set farm_id = $1, variety_id = $2, process = $3,
			purchase_date = $4, green_weight_g = $5, price_per_g = $6,
			moisture_level = $7, notes = $8
		where id = $9
		returning *
	`, lot.FarmID, lot.VarietyID, lot.Process, lot.PurchaseDate,
		lot.GreenWeightG, lot.PricePerG, lot.MoistureLevel, lot.Notes, id).StructScan(&lot)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "lot not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(lot)
}

func (s *Server) deleteLot(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from coffee_lot where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "lot not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
