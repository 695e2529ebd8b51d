package web

import (
	"github.com/gofiber/fiber/v2"

	"roastsync/accounting"
	"roastsync/ent"
)

const recentLimit = 5

func (s *Server) registerDashboard(g fiber.Router) {
	g.Get("/dashboard/summary", s.dashboardSummary)
}

type dashboardResponse struct {
	accounting.Summary
	RecentPurchases []ent.CoffeeLot `json:"recent_purchases"`
	RecentExpenses  []ent.Expense   `json:"recent_expenses"`
	RecentSales     []ent.Sale      `json:"recent_sales"`
}

// dashboardSummary loads a full snapshot and reduces it with the accounting
// core. The dataset of a single roastery is small enough that loading it
// whole is the simple and correct thing to do.
func (s *Server) dashboardSummary(ctx *fiber.Ctx) error {
	var lots []ent.CoffeeLot
	if err := s.db.Select(&lots, `select * from coffee_lot`); err != nil {
		return err
	}

	var roasts []ent.RoastBatch
	if err := s.db.Select(&roasts, `select * from roast_batch`); err != nil {
		return err
	}

	sales := []ent.Sale{}
	if err := s.db.Select(&sales, `select * from sale`); err != nil {
		return err
	}
	if err := s.attachItems(sales); err != nil {
		return err
	}

	var expenses []ent.Expense
	if err := s.db.Select(&expenses, `select * from expense`); err != nil {
		return err
	}

	var adjustments []ent.InventoryAdjustment
	if err := s.db.Select(&adjustments, `select * from inventory_adjustment`); err != nil {
		return err
	}

	resp := dashboardResponse{
		Summary: accounting.Summarize(lots, roasts, sales, expenses, adjustments),
	}

	resp.RecentPurchases = []ent.CoffeeLot{}
	err := s.db.Select(&resp.RecentPurchases, `
		select * from coffee_lot order by purchase_date desc, id desc limit $1
	`, recentLimit)
	if err != nil {
		return err
	}

	resp.RecentExpenses = []ent.Expense{}
	err = s.db.Select(&resp.RecentExpenses, `
		select * from expense order by expense_date desc, id desc limit $1
	`, recentLimit)
	if err != nil {
		return err
	}

	resp.RecentSales = []ent.Sale{}
	err = s.db.Select(&resp.RecentSales, `
		select * from sale order by sale_date desc, id desc limit $1
	`, recentLimit)
	if err != nil {
		return err
	}
	if err := s.attachItems(resp.RecentSales); err != nil {
		return err
	}

	return ctx.JSON(resp)
}
