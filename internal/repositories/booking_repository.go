package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bar_pos_backend/internal/models"
)

// BookingRepository defines the interface for room booking database operations.
type BookingRepository interface {
	CreateRoomBooking(executor SQLExecutor, booking *models.RoomBooking) (int64, error)
	GetRoomBookingByID(id int64) (*models.RoomBooking, error)
	GetRoomBookings(filters models.RoomBookingFilters) ([]models.RoomBooking, int, error)
	DeleteRoomBooking(executor SQLExecutor, id int64) error
}

type bookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new instance of BookingRepository.
func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) CreateRoomBooking(executor SQLExecutor, booking *models.RoomBooking) (int64, error) {
	query := `INSERT INTO room_bookings
	            (category, customer_type, room_type, has_discount, num_nights,
	             price, total_price, customer_name, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		booking.Category, booking.CustomerType, booking.RoomType, booking.HasDiscount, booking.NumNights,
		booking.Price, booking.TotalPrice, booking.CustomerName, booking.CreatedAt,
	).Scan(&booking.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating room booking: %v", ErrDatabaseError, err)
	}
	return booking.ID, nil
}

func (r *bookingRepository) GetRoomBookingByID(id int64) (*models.RoomBooking, error) {
	booking := &models.RoomBooking{}
	query := `SELECT id, category, customer_type, room_type, has_discount, num_nights,
	                 price, total_price, customer_name, created_at
	          FROM room_bookings
	          WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&booking.ID, &booking.Category, &booking.CustomerType, &booking.RoomType, &booking.HasDiscount,
		&booking.NumNights, &booking.Price, &booking.TotalPrice, &booking.CustomerName, &booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting room booking by ID %d: %v", ErrDatabaseError, id, err)
	}
	return booking, nil
}

func (r *bookingRepository) GetRoomBookings(filters models.RoomBookingFilters) ([]models.RoomBooking, int, error) {
	bookings := []models.RoomBooking{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, category, customer_type, room_type, has_discount, num_nights,
	    price, total_price, customer_name, created_at, COUNT(*) OVER() AS total_count
	  FROM room_bookings`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.RoomType != nil && *filters.RoomType != "" {
		conditions = append(conditions, fmt.Sprintf("room_type = $%d", argCount))
		args = append(args, *filters.RoomType)
		argCount++
	}
	if filters.StartDate != nil && *filters.StartDate != "" {
		if start, err := time.Parse("2006-01-02", *filters.StartDate); err == nil {
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argCount))
			args = append(args, start)
			argCount++
		}
	}
	if filters.EndDate != nil && *filters.EndDate != "" {
		if end, err := time.Parse("2006-01-02", *filters.EndDate); err == nil {
			conditions = append(conditions, fmt.Sprintf("created_at < $%d", argCount))
			args = append(args, end.AddDate(0, 0, 1))
			argCount++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, (page-1)*filters.PageSize)
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying room bookings: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.RoomBooking
		if err := rows.Scan(
			&booking.ID, &booking.Category, &booking.CustomerType, &booking.RoomType, &booking.HasDiscount,
			&booking.NumNights, &booking.Price, &booking.TotalPrice, &booking.CustomerName, &booking.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning room booking: %v", ErrDatabaseError, err)
		}
		bookings = append(bookings, booking)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating room booking rows: %v", ErrDatabaseError, err)
	}
	return bookings, totalCount, nil
}

func (r *bookingRepository) DeleteRoomBooking(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM room_bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting room booking ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
