// README: Trip receipt PDFs for completed and cancelled bookings.
package docs

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"cabswift/internal/modules/booking"
)

// Receipt renders an A4 receipt for a finished booking and returns the
// bytes plus a download filename.
func Receipt(b *booking.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRIP RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking No     : %s", b.Number),
		fmt.Sprintf("Status         : %s", b.Status),
		fmt.Sprintf("Trip Type      : %s", b.TripType),
		fmt.Sprintf("From           : %s", safe(b.Pickup.Address)),
		fmt.Sprintf("To             : %s", safe(b.Drop.Address)),
		fmt.Sprintf("Pickup Time    : %s", b.Pickup.At.Format("02 Jan 2006 15:04")),
		fmt.Sprintf("Passengers     : %d", len(b.Passengers)),
		fmt.Sprintf("Distance       : %.1f km", b.Pricing.DistanceKm),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Fare")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	fare := []string{
		fmt.Sprintf("Base Fare      : %d %s", b.Pricing.BaseFare, b.Pricing.Currency),
		fmt.Sprintf("Extras         : %d %s", b.Pricing.Extras.Sum(), b.Pricing.Currency),
		fmt.Sprintf("Subtotal       : %d %s", b.Pricing.Subtotal, b.Pricing.Currency),
		fmt.Sprintf("Tax            : %d %s", b.Pricing.Tax, b.Pricing.Currency),
		fmt.Sprintf("Discount       : %d %s", b.Pricing.Discount, b.Pricing.Currency),
		fmt.Sprintf("Total          : %d %s", b.Pricing.Total, b.Pricing.Currency),
	}
	for _, s := range fare {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	if b.Cancellation.IsCancelled {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Cancellation")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 7, fmt.Sprintf("Fee            : %d %s", b.Cancellation.Fee, b.Pricing.Currency))
		pdf.Ln(7)
		pdf.Cell(0, 7, fmt.Sprintf("Refund         : %d %s", b.Cancellation.Refund, b.Pricing.Currency))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("RECEIPT_%s.pdf", b.Number), nil
}

func safe(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
