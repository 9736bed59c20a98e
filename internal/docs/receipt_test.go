package docs

import (
	"bytes"
	"testing"
	"time"

	"cabswift/internal/modules/booking"
)

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		Number:   "CS12345678ABCD",
		TripType: booking.TripOneWay,
		Status:   booking.StatusTripCompleted,
		Pickup:   booking.Stop{Address: "MG Road", At: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		Drop:     booking.Stop{Address: "Airport"},
		Passengers: []booking.Passenger{
			{Name: "Asha", Age: 31},
			{Name: "Ravi", Age: 34},
		},
		Pricing: booking.Pricing{
			BaseFare:   560,
			DistanceKm: 40,
			Subtotal:   560,
			Tax:        28,
			Total:      588,
			Currency:   "INR",
		},
	}
}

func TestReceipt(t *testing.T) {
	pdf, name, err := Receipt(sampleBooking())
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty pdf")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
	if name != "RECEIPT_CS12345678ABCD.pdf" {
		t.Errorf("filename = %q", name)
	}
}

func TestReceiptCancelledBooking(t *testing.T) {
	b := sampleBooking()
	b.Status = booking.StatusCancelled
	b.Cancellation = booking.Cancellation{IsCancelled: true, Fee: 29, Refund: 559}

	pdf, _, err := Receipt(b)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty pdf")
	}
}
