package pdf

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"github.com/lucasgday/receivables-sub000/internal/models"
)

// RenderInvoice produces a single-page PDF for an invoice.
func RenderInvoice(invoice models.Invoice, customer models.Customer, company models.Company) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(120, 10, company.Name)
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(60, 10, "INVOICE "+invoice.Number, "", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	if company.TaxID != "" {
		doc.Cell(0, 5, "Tax ID: "+company.TaxID)
		doc.Ln(5)
	}
	if company.Address != "" {
		doc.Cell(0, 5, company.Address)
		doc.Ln(5)
	}
	doc.Ln(8)

	doc.SetFont("Helvetica", "B", 11)
	doc.Cell(0, 6, "Bill to")
	doc.Ln(6)
	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 5, customer.Name)
	doc.Ln(5)
	if customer.Address != "" {
		doc.Cell(0, 5, customer.Address)
		doc.Ln(5)
	}
	if customer.Email != "" {
		doc.Cell(0, 5, customer.Email)
		doc.Ln(5)
	}
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(60, 6, "Issued: "+invoice.IssuedAt.Format("2006-01-02"))
	doc.Cell(60, 6, "Due: "+invoice.DueAt.Format("2006-01-02"))
	doc.Ln(10)

	doc.SetFillColor(240, 240, 240)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(130, 8, "Concept", "1", 0, "L", true, 0, "")
	doc.CellFormat(60, 8, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	concept := invoice.Notes
	if concept == "" {
		concept = "Professional services"
	}
	doc.CellFormat(130, 8, concept, "1", 0, "L", false, 0, "")
	doc.CellFormat(60, 8, invoice.Amount.StringFixed(2)+" "+invoice.Currency, "1", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(130, 8, "Total", "", 0, "R", false, 0, "")
	doc.CellFormat(60, 8, invoice.Amount.StringFixed(2)+" "+invoice.Currency, "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
