package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"roastsync/ent"
)

func (s *Server) registerExpenses(g fiber.Router) {
	g.Get("/expenses", s.listExpenses)
	g.Post("/expenses", s.createExpense)
	g.Get("/expenses/:id", s.getExpense)
	g.Put("/expenses/:id", s.updateExpense)
	g.Delete("/expenses/:id", s.deleteExpense)
}

func (s *Server) listExpenses(ctx *fiber.Ctx) error {
	expenses := []ent.Expense{}
	err := s.db.Select(&expenses, `select * from expense order by expense_date desc, id desc`)
	if err != nil {
		return err
	}
	return ctx.JSON(expenses)
}

func (s *Server) createExpense(ctx *fiber.Ctx) error {
	var expense ent.Expense
	if err := json.Unmarshal(ctx.Body(), &expense); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := s.db.QueryRowx(`
		insert into expense (expense_date, category, amount, notes)
		values ($1, $2, $3, $4)
		returning *
	`, expense.ExpenseDate, expense.Category, expense.Amount, expense.Notes).StructScan(&expense)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(expense)
}

func (s *Server) getExpense(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var expense ent.Expense
	err = s.db.Get(&expense, `select * from expense where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "expense not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(expense)
}

func (s *Server) updateExpense(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var expense ent.Expense
	if err := json.Unmarshal(ctx.Body(), &expense); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err = s.db.QueryRowx(`
		update expense set expense_date = $1, category = $2, amount = $3, notes = $4
		where id = $5
		returning *
	`, expense.ExpenseDate, expense.Category, expense.Amount, expense.Notes, id).StructScan(&expense)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "expense not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(expense)
}

func (s *Server) deleteExpense(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from expense where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "expense not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
