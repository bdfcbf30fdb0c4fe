package domain

import "time"

type Flight struct {
	ID             int64
	FlightNumber   string
	FromAirport    string
	ToAirport      string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	TotalSeats     int
	AvailableSeats int
	Price          float64
	Currency       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
