package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"roastsync/accounting"
	"roastsync/ent"
)

func (s *Server) registerInventory(g fiber.Router) {
	g.Get("/inventory/roasted", s.listRoastedInventory)
	g.Get("/inventory/adjustments", s.listAdjustments)
	g.Post("/inventory/adjustments", s.createAdjustment)
	g.Put("/inventory/adjustments/:id", s.updateAdjustment)
	g.Delete("/inventory/adjustments/:id", s.deleteAdjustment)
}

// listRoastedInventory reports every roast batch with the grams sold and
// adjusted against it. available_g is served unclamped: a negative value is
// a data inconsistency the client should show as a warning, and hiding it
// here would mask overdrafts.
func (s *Server) listRoastedInventory(ctx *fiber.Ctx) error {
	entries := []ent.RoastedInventoryEntry{}
	err := s.db.Select(&entries, `
		select r.id as roast_id, r.roast_date, r.roast_level, r.green_input_g,
		       r.roasted_output_g, r.shrinkage_pct, r.notes,
		       l.id as lot_id, l.process as lot_process,
		       f.name as farm_name, v.name as variety_name,
		       coalesce(sold.sold_g, 0) as sold_g,
		       coalesce(adj.adjustments_g, 0) as adjustments_g,
		       r.roasted_output_g - coalesce(sold.sold_g, 0)
		           + coalesce(adj.adjustments_g, 0) as available_g
		from roast_batch r
		    join coffee_lot l on l.id = r.lot_id
		    join farm f on f.id = l.farm_id
		    join variety v on v.id = l.variety_id
		    left join (
		        select roast_batch_id, sum(bag_size_g * bags) as sold_g
		        from sale_item group by roast_batch_id
		    ) sold on sold.roast_batch_id = r.id
		    left join (
		        select roast_batch_id, sum(adjustment_g) as adjustments_g
		        from inventory_adjustment group by roast_batch_id
		    ) adj on adj.roast_batch_id = r.id
		order by r.roast_date desc, r.id desc
	`)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.AvailableG < 0 {
			logrus.WithFields(logrus.Fields{
				"roast_id":    e.RoastID,
				"available_g": e.AvailableG,
			}).Warn("roast batch has negative available stock")
		}
	}

	return ctx.JSON(entries)
}

func (s *Server) listAdjustments(ctx *fiber.Ctx) error {
	adjustments := []ent.InventoryAdjustment{}

	var err error
	if roastID := ctx.QueryInt("roast_id"); roastID > 0 {
		err = s.db.Select(&adjustments, `
			select * from inventory_adjustment
			where roast_batch_id = $1
			order by adjustment_date desc, id desc
		`, roastID)
	} else {
		err = s.db.Select(&adjustments, `
			select * from inventory_adjustment
			order by adjustment_date desc, id desc
		`)
	}
	if err != nil {
		return err
	}

	return ctx.JSON(adjustments)
}

// checkAdjustment verifies the target roast batch exists. The delta's sign
// is free-form: negative records a loss, positive a correction.
func (s *Server) checkAdjustment(adj ent.InventoryAdjustment) error {
	var exists bool
	err := s.db.Get(&exists, `select exists (select 1 from roast_batch where id = $1)`, adj.RoastBatchID)
	if err != nil {
		return err
	}
	if !exists {
		return fiber.NewError(http.StatusNotFound, "roast not found")
	}

	return nil
}

func zeroAdjustmentRejection() accounting.Rejections {
	return accounting.Rejections{{
		Kind:    accounting.NonPositiveQuantity,
		Field:   "adjustment_g",
		Message: "adjustment cannot be zero",
	}}
}

func (s *Server) createAdjustment(ctx *fiber.Ctx) error {
	var adj ent.InventoryAdjustment
	if err := json.Unmarshal(ctx.Body(), &adj); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if math.Abs(adj.AdjustmentG) < 1e-6 {
		return rejected(ctx, zeroAdjustmentRejection())
	}
	if err := s.checkAdjustment(adj); err != nil {
		return err
	}

	if adj.AdjustmentDate.IsZero() {
		adj.AdjustmentDate = ent.Today()
	}

	err := s.db.QueryRowx(`
		insert into inventory_adjustment (roast_batch_id, adjustment_g, adjustment_date, reason)
		values ($1, $2, $3, $4)
		returning *
	`, adj.RoastBatchID, adj.AdjustmentG, adj.AdjustmentDate, adj.Reason).StructScan(&adj)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(adj)
}

func (s *Server) updateAdjustment(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var adj ent.InventoryAdjustment
	if err := json.Unmarshal(ctx.Body(), &adj); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if math.Abs(adj.AdjustmentG) < 1e-6 {
		return rejected(ctx, zeroAdjustmentRejection())
	}
	if err := s.checkAdjustment(adj); err != nil {
		return err
	}

	if adj.AdjustmentDate.IsZero() {
		adj.AdjustmentDate = ent.Today()
	}

	err = s.db.QueryRowx(`
		update inventory_adjustment
		set roast_batch_id = $1, adjustment_g = $2, adjustment_date = $3, reason = $4
		where id = $5
		returning *
	`, adj.RoastBatchID, adj.AdjustmentG, adj.AdjustmentDate, adj.Reason, id).StructScan(&adj)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "adjustment not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(adj)
}

func (s *Server) deleteAdjustment(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from inventory_adjustment where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "adjustment not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
