package receipts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

// BuildBookingReceipt renders a one-page PDF receipt for a paid booking.
func BuildBookingReceipt(booking *models.Booking, car *models.Car, payment *models.Payment) ([]byte, error) {
	if booking == nil {
		return nil, fmt.Errorf("booking is required")
	}
	if booking.PaymentStatus != models.PaymentStatePaid {
		return nil, models.Validationf("receipt is only available for paid bookings")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Car Rental Booking Receipt")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	line("Booking ID", booking.ID.Hex())
	line("Customer", booking.CustomerID.String())
	line("Agent", booking.AgentID.String())
	if car != nil {
		line("Car", fmt.Sprintf("%s %s (%d)", car.Name, car.Model, car.Year))
		line("License plate", car.LicensePlate)
	}
	line("Pickup location", booking.Location)
	line("From", booking.DateFrom.Format("2006-01-02"))
	line("To", booking.DateTo.Format("2006-01-02"))
	pdf.Ln(4)

	line("Total", fmt.Sprintf("%.2f", booking.Price))
	if payment != nil {
		line("Payment status", string(payment.Status))
		line("Currency", payment.Currency)
		if payment.IntentID != "" {
			line("Payment reference", payment.IntentID)
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Generated "+time.Now().Format(time.RFC1123))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %v", err)
	}
	return buf.Bytes(), nil
}
