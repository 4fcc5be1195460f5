package services

import (
	"errors"
	"testing"

	"bar_pos_backend/internal/models"
)

func TestCreateRoomBookingDerivesTotal(t *testing.T) {
	svc := NewBookingService(newFakeBookingRepo(), nil)

	booking, err := svc.CreateRoomBooking(CreateBookingRequest{
		Category:     "Hotel",
		CustomerType: "Walk-in",
		RoomType:     "Lux",
		NumNights:    3,
		Price:        120.50,
		CustomerName: "Dana",
	})
	if err != nil {
		t.Fatalf("CreateRoomBooking: %v", err)
	}
	if booking.ID == 0 {
		t.Error("want assigned id")
	}
	if booking.TotalPrice != 361.50 {
		t.Errorf("want total 361.50, got %v", booking.TotalPrice)
	}
}

func TestRoomBookingLifecycle(t *testing.T) {
	svc := NewBookingService(newFakeBookingRepo(), nil)

	created, err := svc.CreateRoomBooking(CreateBookingRequest{
		Category:     "Hotel",
		CustomerType: "Regular",
		RoomType:     "Standard",
		NumNights:    1,
		Price:        80,
		CustomerName: "Erlan",
	})
	if err != nil {
		t.Fatalf("CreateRoomBooking: %v", err)
	}

	fetched, err := svc.GetRoomBookingByID(created.ID)
	if err != nil {
		t.Fatalf("GetRoomBookingByID: %v", err)
	}
	if fetched.CustomerName != "Erlan" {
		t.Errorf("unexpected booking: %+v", fetched)
	}

	bookings, total, err := svc.GetRoomBookings(models.RoomBookingFilters{})
	if err != nil {
		t.Fatalf("GetRoomBookings: %v", err)
	}
	if total != 1 || len(bookings) != 1 {
		t.Errorf("want 1 booking, got %d", total)
	}

	if err := svc.DeleteRoomBooking(created.ID); err != nil {
		t.Fatalf("DeleteRoomBooking: %v", err)
	}
	if _, err := svc.GetRoomBookingByID(created.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("want ErrBookingNotFound, got %v", err)
	}
}
