package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/repositories"
)

var ErrBookingNotFound = errors.New("room booking not found")

// CreateBookingRequest captures a new room booking. The total price is
// derived server-side from price and nights.
type CreateBookingRequest struct {
	Category     string  `json:"category" binding:"required"`
	CustomerType string  `json:"customer_type" binding:"required"`
	RoomType     string  `json:"room_type" binding:"required"`
	HasDiscount  bool    `json:"has_discount"`
	NumNights    int     `json:"num_nights" binding:"required,gte=1"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	CustomerName string  `json:"customer_name" binding:"required"`
}

// BookingService manages hotel room bookings.
type BookingService interface {
	CreateRoomBooking(req CreateBookingRequest) (*models.RoomBooking, error)
	GetRoomBookingByID(id int64) (*models.RoomBooking, error)
	GetRoomBookings(filters models.RoomBookingFilters) ([]models.RoomBooking, int, error)
	DeleteRoomBooking(id int64) error
}

type bookingService struct {
	bookingRepo repositories.BookingRepository
	db          *sql.DB
}

// NewBookingService creates a new instance of BookingService.
func NewBookingService(bookingRepo repositories.BookingRepository, db *sql.DB) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		db:          db,
	}
}

func (s *bookingService) CreateRoomBooking(req CreateBookingRequest) (*models.RoomBooking, error) {
	total := decimal.NewFromFloat(req.Price).Mul(decimal.NewFromInt(int64(req.NumNights)))

	booking := &models.RoomBooking{
		Category:     req.Category,
		CustomerType: req.CustomerType,
		RoomType:     req.RoomType,
		HasDiscount:  req.HasDiscount,
		NumNights:    req.NumNights,
		Price:        req.Price,
		TotalPrice:   total.InexactFloat64(),
		CustomerName: req.CustomerName,
	}

	id, err := s.bookingRepo.CreateRoomBooking(s.db, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create room booking: %w", err)
	}
	booking.ID = id
	return booking, nil
}

func (s *bookingService) GetRoomBookingByID(id int64) (*models.RoomBooking, error) {
	booking, err := s.bookingRepo.GetRoomBookingByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get room booking %d: %w", id, err)
	}
	return booking, nil
}

func (s *bookingService) GetRoomBookings(filters models.RoomBookingFilters) ([]models.RoomBooking, int, error) {
	bookings, total, err := s.bookingRepo.GetRoomBookings(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get room bookings: %w", err)
	}
	return bookings, total, nil
}

func (s *bookingService) DeleteRoomBooking(id int64) error {
	if err := s.bookingRepo.DeleteRoomBooking(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to delete room booking %d: %w", id, err)
	}
	return nil
}
