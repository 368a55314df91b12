package services

import (
	"bytes"
	"fmt"
	"time"

	"garage-backend/internal/config"
	"garage-backend/internal/metrics"
	"garage-backend/internal/models"
	"garage-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// PDFService renders tax invoices for printing and sharing.
type PDFService struct {
	cfg *config.Config
}

func NewPDFService(cfg *config.Config) *PDFService {
	return &PDFService{cfg: cfg}
}

// GenerateInvoicePDF renders a GST tax invoice as an A4 PDF
func (s *PDFService) GenerateInvoicePDF(detail *models.InvoiceDetail) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.PDFGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, s.cfg.Workshop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if s.cfg.Workshop.Address != "" {
		pdf.CellFormat(190, 5, s.cfg.Workshop.Address, "", 1, "C", false, 0, "")
	}
	headerLine := ""
	if s.cfg.Workshop.Phone != "" {
		headerLine = fmt.Sprintf("Phone: %s", s.cfg.Workshop.Phone)
	}
	if s.cfg.Workshop.GSTIN != "" {
		if headerLine != "" {
			headerLine += "  |  "
		}
		headerLine += fmt.Sprintf("GSTIN: %s", s.cfg.Workshop.GSTIN)
	}
	if headerLine != "" {
		pdf.CellFormat(190, 5, headerLine, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	title := "TAX INVOICE"
	if detail.TaxMode == models.TaxDisabled {
		title = "INVOICE"
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(190, 9, title, "1", 1, "C", false, 0, "")

	// Invoice meta
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Invoice No: %s", detail.InvoiceNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", timeutil.FormatIST(detail.InvoiceDate, timeutil.DateLayout)), "RB", 1, "R", false, 0, "")
	if detail.DueDate != nil {
		pdf.CellFormat(95, 7, "", "LB", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, fmt.Sprintf("Due: %s", timeutil.FormatIST(*detail.DueDate, timeutil.DateLayout)), "RB", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// Bill-to and vehicle box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 7, "Billed To", "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 7, "Vehicle", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, detail.ClientName, "LR", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, detail.VehicleRegistration, "LR", 1, "L", false, 0, "")
	clientLine := detail.ClientPhone
	if detail.ClientGSTIN != "" {
		clientLine += "  GSTIN: " + detail.ClientGSTIN
	}
	pdf.CellFormat(95, 6, clientLine, "LRB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, detail.VehicleDescription, "LRB", 1, "L", false, 0, "")
	pdf.Ln(3)

	// Items table
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(70, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "HSN/SAC", "1", 0, "C", true, 0, "")
	pdf.CellFormat(15, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Rate", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Disc", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, item := range detail.Items {
		name := item.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, item.HSNSAC, "1", 0, "C", false, 0, "")
		pdf.CellFormat(15, 6, item.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, item.Rate.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, item.Discount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, item.LineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// Totals block, right aligned
	writeTotal := func(label, value string, bold bool) {
		if bold {
			pdf.SetFont("Arial", "B", 10)
		} else {
			pdf.SetFont("Arial", "", 10)
		}
		pdf.CellFormat(130, 6, "", "", 0, "", false, 0, "")
		pdf.CellFormat(30, 6, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, value, "1", 1, "R", false, 0, "")
	}

	writeTotal("Subtotal", detail.Subtotal.StringFixed(2), false)
	if !detail.DiscountAmount.IsZero() {
		writeTotal("Discount", "-"+detail.DiscountAmount.StringFixed(2), false)
	}
	switch detail.TaxMode {
	case models.TaxIntraState:
		writeTotal(fmt.Sprintf("CGST %s%%", detail.CGSTRate.String()), detail.CGSTAmount.StringFixed(2), false)
		writeTotal(fmt.Sprintf("SGST %s%%", detail.SGSTRate.String()), detail.SGSTAmount.StringFixed(2), false)
	case models.TaxInterState:
		writeTotal(fmt.Sprintf("IGST %s%%", detail.IGSTRate.String()), detail.IGSTAmount.StringFixed(2), false)
	}
	if !detail.RoundOff.IsZero() {
		writeTotal("Round Off", detail.RoundOff.StringFixed(2), false)
	}
	writeTotal("Total", "Rs. "+detail.TotalAmount.StringFixed(2), true)
	if !detail.PaidAmount.IsZero() {
		writeTotal("Paid", detail.PaidAmount.StringFixed(2), false)
		writeTotal("Balance", detail.BalanceDue.StringFixed(2), true)
	}
	pdf.Ln(5)

	// Payment state banner
	switch detail.PaymentStatus {
	case models.PaymentPaid:
		pdf.SetFillColor(200, 255, 200)
	case models.PaymentPartiallyPaid:
		pdf.SetFillColor(255, 240, 200)
	default:
		pdf.SetFillColor(255, 200, 200)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, fmt.Sprintf("Payment Status: %s", detail.PaymentStatus), "1", 1, "C", true, 0, "")

	if detail.Notes != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(190, 5, "Notes: "+detail.Notes, "", "L", false)
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(190, 5, fmt.Sprintf("View this invoice online with access code %s", detail.AccessCode), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 5, fmt.Sprintf("Generated: %s", timeutil.FormatIST(timeutil.Now(), timeutil.DisplayLayout)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
