package utils

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// ReceiptLine is one priced row on a rendered receipt.
type ReceiptLine struct {
	Name           string
	Quantity       uint32
	UnitPriceCents uint32
}

// Receipt carries everything the PDF renderer needs about a session.
// Callers map their own session representation into it so this package
// depends on nothing above it.
type Receipt struct {
	Reference  string
	DeskName   string
	StartsAt   string
	EndsAt     string
	Status     string
	GuestName  string // empty when the session was created without a name
	TotalCents uint32
	Lines      []ReceiptLine
}

// SessionReceiptPDF renders a guest receipt for a session: the desk,
// the occupancy window and every priced line, with free promotional
// units listed at 0.00.  Amounts are formatted from minor units.
func SessionReceiptPDF(rec *Receipt, spaceName string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Desk Session Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, spaceName)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Desk session receipt")
	pdf.Ln(10)

	head := []string{
		fmt.Sprintf("Reference : %s", rec.Reference),
		fmt.Sprintf("Desk      : %s", rec.DeskName),
		fmt.Sprintf("From      : %s", rec.StartsAt),
		fmt.Sprintf("Until     : %s", rec.EndsAt),
		fmt.Sprintf("Status    : %s", rec.Status),
	}
	if rec.GuestName != "" {
		head = append(head, fmt.Sprintf("Guest     : %s", rec.GuestName))
	}
	for _, s := range head {
		pdf.Cell(0, 6, s)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(80, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, ln := range rec.Lines {
		label := ln.Name
		if ln.UnitPriceCents == 0 {
			label += " (free)"
		}
		pdf.CellFormat(80, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", ln.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatCents(ln.UnitPriceCents), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatCents(ln.UnitPriceCents*ln.Quantity), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, formatCents(rec.TotalCents), "T", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "One coffee is on the house for every paid desk hour. Settlement is handled at the counter.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("receipt_%s.pdf", rec.Reference)
	return buf.Bytes(), filename, nil
}

// formatCents renders a minor-unit amount as a decimal string.
func formatCents(cents uint32) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
