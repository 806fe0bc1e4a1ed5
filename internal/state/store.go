// Package state persists users, saved charts and generated readings.
// It speaks SQLite for local use and PostgreSQL when DATABASE_URL points
// at one, with goose migrations embedded in the binary.
package state

import (
	"errors"
	"time"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// SignupBonusCoins is credited to every new account.
const SignupBonusCoins = 10

// User is a registered account. Coins gate paid interpretations.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"full_name"`
	Coins          int       `json:"coins"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChartRecord is a saved calculation: the birth data plus the computed
// chart as JSON.
type ChartRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Reading is a stored interpretation for a chart.
type Reading struct {
	ID         string    `json:"id"`
	ChartID    string    `json:"chart_id"`
	ReportType string    `json:"report_type"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is what the HTTP and CLI layers need from persistence.
type Store interface {
	CreateUser(email, hashedPassword, fullName string) (*User, error)
	GetUser(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	SpendCoins(userID string, amount int) (*User, error)
	AddCoins(userID string, amount int) (*User, error)

	SaveChart(rec *ChartRecord) error
	GetChart(id string) (*ChartRecord, error)
	ListCharts(userID string) ([]*ChartRecord, error)

	SaveReading(r *Reading) error
	ListReadings(chartID string) ([]*Reading, error)

	Close() error
}
