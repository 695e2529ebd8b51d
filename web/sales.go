package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"

	"roastsync/accounting"
	"roastsync/ent"
)

func (s *Server) registerSales(g fiber.Router) {
	g.Get("/sales", s.listSales)
	g.Get("/sales/debts", s.listDebts)
	g.Post("/sales", s.createSale)
	g.Get("/sales/:id", s.getSale)
	g.Put("/sales/:id", s.updateSale)
	g.Delete("/sales/:id", s.deleteSale)
}

// attachItems loads the line items of every sale in one query.
func (s *Server) attachItems(sales []ent.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	ids := make([]int64, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}

	var items []ent.SaleItem
	err := s.db.Select(&items, `
		select * from sale_item where sale_id = ANY($1::BIGINT[])
		order by id asc
	`, pq.Array(ids))
	if err != nil {
		return err
	}

	bySale := map[int64][]ent.SaleItem{}
	for _, it := range items {
		bySale[it.SaleID] = append(bySale[it.SaleID], it)
	}
	for i := range sales {
		sales[i].Items = bySale[sales[i].ID]
		if sales[i].Items == nil {
			sales[i].Items = []ent.SaleItem{}
		}
	}

	return nil
}

func (s *Server) listSales(ctx *fiber.Ctx) error {
	sales := []ent.Sale{}
	err := s.db.Select(&sales, `select * from sale order by sale_date desc, id desc`)
	if err != nil {
		return err
	}
	if err := s.attachItems(sales); err != nil {
		return err
	}
	return ctx.JSON(sales)
}

func (s *Server) listDebts(ctx *fiber.Ctx) error {
	sales := []ent.Sale{}
	err := s.db.Select(&sales, `
		select * from sale
		where total_price - amount_paid > 0.0001
		order by sale_date desc, id desc
	`)
	if err != nil {
		return err
	}
	if err := s.attachItems(sales); err != nil {
		return err
	}
	return ctx.JSON(sales)
}

// checkSale validates a submission against a fresh snapshot of the roast
// batches its items draw on. excludeSaleID frees the grams already held by
// the sale under edit.
func (s *Server) checkSale(in ent.Sale, excludeSaleID int64) (accounting.Rejections, error) {
	var roastIDs []int64
	seen := map[int64]bool{}
	for _, it := range in.Items {
		if !seen[it.RoastBatchID] {
			seen[it.RoastBatchID] = true
			roastIDs = append(roastIDs, it.RoastBatchID)
		}
	}

	roasts := map[int64]ent.RoastBatch{}
	var items []ent.SaleItem
	var adjustments []ent.InventoryAdjustment

	if len(roastIDs) > 0 {
		var batches []ent.RoastBatch
		err := s.db.Select(&batches, `
			select * from roast_batch where id = ANY($1::BIGINT[])
		`, pq.Array(roastIDs))
		if err != nil {
			return nil, err
		}
		if len(batches) != len(roastIDs) {
			return nil, fiber.NewError(http.StatusNotFound, "roast not found")
		}
		for _, b := range batches {
			roasts[b.ID] = b
		}

		err = s.db.Select(&items, `
			select * from sale_item where roast_batch_id = ANY($1::BIGINT[])
		`, pq.Array(roastIDs))
		if err != nil {
			return nil, err
		}

		err = s.db.Select(&adjustments, `
			select * from inventory_adjustment where roast_batch_id = ANY($1::BIGINT[])
		`, pq.Array(roastIDs))
		if err != nil {
			return nil, err
		}
	}

	available := func(roastBatchID int64) float64 {
		return accounting.AvailableRoasted(roasts[roastBatchID], items, adjustments, excludeSaleID)
	}

	return accounting.ValidateSale(in, available, s.cfg.BagSizes), nil
}

func (s *Server) insertItems(tx *sql.Tx, saleID int64, items []ent.SaleItem) ([]ent.SaleItem, error) {
	inserted := make([]ent.SaleItem, 0, len(items))
	for _, it := range items {
		row := tx.QueryRow(`
			insert into sale_item (sale_id, roast_batch_id, bag_size_g, bags, bag_price, notes)
			values ($1, $2, $3, $4, $5, $6)
			returning id
		`, saleID, it.RoastBatchID, it.BagSizeG, it.Bags, it.BagPrice, it.Notes)
		if err := row.Scan(&it.ID); err != nil {
			return nil, err
		}
		it.SaleID = saleID
		inserted = append(inserted, it)
	}
	return inserted, nil
}

func (s *Server) createSale(ctx *fiber.Ctx) (err error) {
	var in ent.Sale
	if err = json.Unmarshal(ctx.Body(), &in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	rejections, err := s.checkSale(in, 0)
	if err != nil {
		return err
	}
	if len(rejections) > 0 {
		return rejected(ctx, rejections)
	}

	settlement := accounting.SettleSale(in.Items, in.IsPaid, in.AmountPaid, time.Now())

	tx, err := s.db.BeginTxx(context.TODO(), nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var sale ent.Sale
	err = tx.QueryRowx(`
		insert into sale (customer_id, sale_date, notes, is_paid, amount_paid,
			paid_at, total_price, total_quantity_g)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning *
	`, in.CustomerID, in.SaleDate, in.Notes, settlement.IsPaid, settlement.AmountPaid,
		settlement.PaidAt, settlement.TotalPrice, settlement.TotalQuantityG).StructScan(&sale)
	if err != nil {
		return err
	}

	sale.Items, err = s.insertItems(tx.Tx, sale.ID, in.Items)
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(sale)
}

func (s *Server) getSale(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	sales := []ent.Sale{}
	err = s.db.Select(&sales, `select * from sale where id = $1`, id)
	if err != nil {
		return err
	}
	if len(sales) == 0 {
		return fiber.NewError(http.StatusNotFound, "sale not found")
	}
	if err := s.attachItems(sales); err != nil {
		return err
	}

	return ctx.JSON(sales[0])
}

func (s *Server) updateSale(ctx *fiber.Ctx) (err error) {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var existing ent.Sale
	err = s.db.Get(&existing, `select * from sale where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "sale not found")
	}
	if err != nil {
		return err
	}

	var in ent.Sale
	if err = json.Unmarshal(ctx.Body(), &in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	rejections, err := s.checkSale(in, id)
	if err != nil {
		return err
	}
	if len(rejections) > 0 {
		return rejected(ctx, rejections)
	}

	settlement := accounting.SettleSale(in.Items, in.IsPaid, in.AmountPaid, time.Now())

	// a sale that stays paid keeps its original payment timestamp
	paidAt := settlement.PaidAt
	if settlement.IsPaid && existing.IsPaid && existing.PaidAt != nil {
		paidAt = existing.PaidAt
	}

	tx, err := s.db.BeginTxx(context.TODO(), nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var sale ent.Sale
	err = tx.QueryRowx(`
		update sale set customer_id = $1, sale_date = $2, notes = $3,
			is_paid = $4, amount_paid = $5, paid_at = $6,
			total_price = $7, total_quantity_g = $8
		where id = $9
		returning *
	`, in.CustomerID, in.SaleDate, in.Notes, settlement.IsPaid, settlement.AmountPaid,
		paidAt, settlement.TotalPrice, settlement.TotalQuantityG, id).StructScan(&sale)
	if err != nil {
		return err
	}

	// the item set is replaced as a whole
	if _, err = tx.Exec(`delete from sale_item where sale_id = $1`, id); err != nil {
		return err
	}
	sale.Items, err = s.insertItems(tx.Tx, id, in.Items)
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	return ctx.JSON(sale)
}

func (s *Server) deleteSale(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from sale where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "sale not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
