package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"roastsync/ent"
)

func (s *Server) registerCustomers(g fiber.Router) {
	g.Get("/customers", s.listCustomers)
	g.Post("/customers", s.createCustomer)
	g.Get("/customers/:id", s.getCustomer)
	g.Put("/customers/:id", s.updateCustomer)
	g.Delete("/customers/:id", s.deleteCustomer)
}

func (s *Server) listCustomers(ctx *fiber.Ctx) error {
	customers := []ent.Customer{}
	err := s.db.Select(&customers, `select * from customer order by name, id`)
	if err != nil {
		return err
	}
	return ctx.JSON(customers)
}

func (s *Server) createCustomer(ctx *fiber.Ctx) error {
	var customer ent.Customer
	if err := json.Unmarshal(ctx.Body(), &customer); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := s.db.QueryRowx(`
		insert into customer (name, contact_info)
		values ($1, $2)
		returning *
	`, customer.Name, customer.ContactInfo).StructScan(&customer)
	if err != nil {
		return err
	}

	return ctx.Status(http.StatusCreated).JSON(customer)
}

func (s *Server) getCustomer(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var customer ent.Customer
	err = s.db.Get(&customer, `select * from customer where id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "customer not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(customer)
}

func (s *Server) updateCustomer(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var customer ent.Customer
	if err := json.Unmarshal(ctx.Body(), &customer); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err = s.db.QueryRowx(`
		update customer set name = $1, contact_info = $2
		where id = $3
		returning *
	`, customer.Name, customer.ContactInfo, id).StructScan(&customer)
	if errors.Is(err, sql.ErrNoRows) {
		return fiber.NewError(http.StatusNotFound, "customer not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(customer)
}

func (s *Server) deleteCustomer(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from customer where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiber.NewError(http.StatusNotFound, "customer not found")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
