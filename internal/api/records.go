package api

import (
	"context"
	"fmt"
	"net/http"
)

// Apartments

func (c *Client) ListApartments(ctx context.Context) ([]Apartment, error) {
	var out []Apartment
	err := c.do(ctx, http.MethodGet, "/apartments", nil, &out)
	return out, err
}

func (c *Client) CreateApartment(ctx context.Context, in NewApartment) (Apartment, error) {
	var out Apartment
	err := c.do(ctx, http.MethodPost, "/apartments", in, &out)
	return out, err
}

func (c *Client) UpdateApartment(ctx context.Context, id int, in NewApartment) (Apartment, error) {
	var out Apartment
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/apartments/%d", id), in, &out)
	return out, err
}

// Units

func (c *Client) ListUnits(ctx context.Context, apartmentID int) ([]Unit, error) {
	var out []Unit
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/apartments/%d/units", apartmentID), nil, &out)
	return out, err
}

func (c *Client) CreateUnit(ctx context.Context, apartmentID int, in NewUnit) (Unit, error) {
	var out Unit
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/apartments/%d/units", apartmentID), in, &out)
	return out, err
}

func (c *Client) UpdateUnit(ctx context.Context, apartmentID, unitID int, in NewUnit) (Unit, error) {
	var out Unit
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/apartments/%d/units/%d", apartmentID, unitID), in, &out)
	return out, err
}

func (c *Client) DeleteUnit(ctx context.Context, apartmentID, unitID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/apartments/%d/units/%d", apartmentID, unitID), nil, nil)
}

// Occupants

func (c *Client) ListOccupants(ctx context.Context, unitID int) ([]Occupant, error) {
	var out []Occupant
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/units/%d/occupants", unitID), nil, &out)
	return out, err
}

func (c *Client) CreateOccupant(ctx context.Context, unitID int, in NewOccupant) (Occupant, error) {
	var out Occupant
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/units/%d/occupants", unitID), in, &out)
	return out, err
}

func (c *Client) UpdateOccupant(ctx context.Context, unitID, occupantID int, in NewOccupant) (Occupant, error) {
	var out Occupant
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/units/%d/occupants/%d", unitID, occupantID), in, &out)
	return out, err
}

func (c *Client) DeleteOccupant(ctx context.Context, unitID, occupantID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/units/%d/occupants/%d", unitID, occupantID), nil, nil)
}

// Invoices

func (c *Client) ListInvoices(ctx context.Context, unitID int) ([]Invoice, error) {
	var out []Invoice
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/units/%d/invoices", unitID), nil, &out)
	return out, err
}

func (c *Client) CreateInvoice(ctx context.Context, unitID int, in NewInvoice) (Invoice, error) {
	var out Invoice
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/units/%d/invoices", unitID), in, &out)
	return out, err
}

func (c *Client) UpdateInvoice(ctx context.Context, unitID, invoiceID int, in NewInvoice) (Invoice, error) {
	var out Invoice
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/units/%d/invoices/%d", unitID, invoiceID), in, &out)
	return out, err
}

func (c *Client) DeleteInvoice(ctx context.Context, unitID, invoiceID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/units/%d/invoices/%d", unitID, invoiceID), nil, nil)
}

// MarkInvoicePaid flips an invoice to paid.
func (c *Client) MarkInvoicePaid(ctx context.Context, invoiceID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/invoices/%d/mark-paid", invoiceID), nil, nil)
}

// MarkInvoiceUnpaid reverts a paid invoice to due.
func (c *Client) MarkInvoiceUnpaid(ctx context.Context, invoiceID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/invoices/%d/mark-unpaid", invoiceID), nil, nil)
}

// Dashboard

func (c *Client) Dashboard(ctx context.Context) (DashboardSummary, error) {
	var out DashboardSummary
	err := c.do(ctx, http.MethodGet, "/dashboard", nil, &out)
	return out, err
}
