package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"roastsync/accounting"
	"roastsync/ent"
)

func (s *Server) registerRoasts(g fiber.Router) {
	g.Get("/roasts", s.listRoasts)
	g.Post("/roasts", s.createRoast)
	g.Get("/roasts/:id", s.getRoast)
	g.Put("/roasts/:id", s.updateRoast)
	g.Delete("/roasts/:id", s.deleteRoast)
}

func (s *Server) listRoasts(ctx *fiber.Ctx) error {
	roasts := []ent.RoastBatch{}
	err := s.db.Select(&roasts, `select * from roast_batch order by roast_date desc, id desc`)
	if err != nil {
		return err
	}
	return ctx.JSON(roasts)
}

// checkRoast loads the lot and its sibling batches and runs the accounting
// validation. in.ID excludes the batch itself when editing.
func (s *Server) checkRoast(in ent.RoastBatch) (accounting.Rejections, error) {
	var lot ent.CoffeeLot
	err := s.db.Get(&lot, `select * from coffee_lot where id = $1`, in.LotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fiber.NewError(http.StatusNotFound, "lot not found")
	}
	if err != nil {
		return nil, err
	}

	var siblings []ent.RoastBatch
	err = s.db.Select(&siblings, `select * from roast_batch where lot_id = $1`, in.LotID)
	if err != nil {
		return nil, err
	}

	if err := accounting.ValidateRoastBatch(in, lot, siblings); err != nil {
		var rejection accounting.Rejection
		if errors.As(err, &rejection) {
			return accounting.Rejections{rejection}, nil
		}
		return nil, err
	}

	return nil, nil
}

func (s *Server) createRoast(ctx *fiber.Ctx) error {
	var roast ent.RoastBatch
	if err := json.Unmarshal(ctx.Body(), &roast); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	roast.ID = 0

	rejections, err := s.checkRoast(roast)
	if err != nil {
		return err
	}
	if len(rejections) > 0 {
		return rejected(ctx, rejections)
	}

	shrinkage := accounting.Shrinkage(roast.GreenInputG, roast.RoastedOutputG)

	err = s.db.QueryRowx(`
		insert into roast_batch (lot_id, roast_date, green_input_g,
			roasted_output_g, roast_level, shrinkage_pct, notes)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning *
	`, roast.LotID, roast.RoastDate, roast.GreenInputG, roast.RoastedOutputG,
		roast.RoastLevel, shrinkage, roast.Notes).StructScan(&roast)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(roast)
}

func (s *Server) getRoast(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var roast ent.RoastBatch
	err = s.db.Get(&roast, `select * from roast_batch where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "roast not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(roast)
}

func (s *Server) updateRoast(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var exists bool
	err = s.db.Get(&exists, `select exists (select 1 from roast_batch where id = $1)`, id)
	if err != nil {
		return err
	}
	if !exists {
		return fiber.NewError(http.StatusNotFound, "roast not found")
	}

	var roast ent.RoastBatch
	if err := json.Unmarshal(ctx.Body(), &roast); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	roast.ID = id

	rejections, err := s.checkRoast(roast)
	if err != nil {
		return err
	}
	if len(rejections) > 0 {
		return rejected(ctx, rejections)
	}

	shrinkage := accounting.Shrinkage(roast.GreenInputG, roast.RoastedOutputG)

	err = s.db.QueryRowx(`
		update roast_batch set lot_id = $1, roast_date = $2, green_input_g = $3,
			roasted_output_g = $4, roast_level = $5, shrinkage_pct = $6, notes = $7
		where id = $8
		returning *
	`, roast.LotID, roast.RoastDate, roast.GreenInputG, roast.RoastedOutputG,
		roast.RoastLevel, shrinkage, roast.Notes, id).StructScan(&roast)
	if err != nil {
		return err
	}

	return ctx.JSON(roast)
}

func (s *Server) deleteRoast(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from roast_batch where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "roast not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
