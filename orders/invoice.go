package orders

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"arcane/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// PrintInvoice handles GET /api/orders/:id/invoice: renders the order as a
// PDF with a QR code linking back to the order page.
func (api *API) PrintInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("id")
	o, err := api.Ledger.FindByID(ctx, orderID)
	if err == ErrNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve order")
		return
	}

	// Owners print their own invoices; admins print any
	if !canAccessOrder(r, o) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}
	qrCode, _ := qrcode.Encode(frontend+"/account/orders/"+o.ID, qrcode.Medium, 128)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 15, "Arcane - Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	paid := "Unpaid"
	if o.IsPaid {
		paid = "Paid"
	}
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 8, fmt.Sprintf(
		"Order: #%s\nPlaced: %s\nPayment: %s (%s)\nShip to: %s, %s %s, %s",
		o.ShortRef(),
		o.CreatedAt.Format("02 Jan 2006 15:04"),
		o.PaymentMethod,
		paid,
		o.ShippingAddress.Address,
		o.ShippingAddress.City,
		o.ShippingAddress.PostalCode,
		o.ShippingAddress.Country,
	), "", "L", false)
	pdf.Ln(4)

	// Line items
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, it := range o.Items {
		pdf.CellFormat(90, 8, it.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("$%.2f", it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("$%.2f", it.UnitPrice*float64(it.Quantity)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.MultiCell(0, 8, fmt.Sprintf(
		"Items: $%.2f\nShipping: $%.2f\nTotal: $%.2f",
		o.ItemsPrice, o.ShippingPrice, o.TotalPrice,
	), "", "R", false)

	imgOpts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qrCode))
	pdf.ImageOptions("qr", 160, 30, 30, 30, false, imgOpts, 0, "")

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 10, "Thank you for shopping with Arcane.", "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate invoice")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+o.ShortRef()+".pdf")
	w.Write(buf.Bytes())
}
