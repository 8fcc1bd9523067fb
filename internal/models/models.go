package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Role values for User.Role.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role" gorm:"default:'client'"`
	Company      string    `json:"company"`
	// InvitedBy is a lookup-only back-reference: deleting an inviter must
	// never cascade to invitees, so no foreign-key constraint is declared.
	InvitedBy *uint     `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is an opaque bearer token with a fixed absolute expiry.
// Expired rows are deleted lazily on first resolve, not by a sweeper.
type Session struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"uniqueIndex"`
	UserID    uint      `json:"user_id" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	BillingCycle string    `json:"billing_cycle" gorm:"default:'one-off'"`
	// No column default: with one, gorm drops the zero value from the
	// insert and a service created inactive would come back active.
	IsActive   bool      `json:"is_active"`
	FormSchema JSON      `json:"form_schema,omitempty" gorm:"type:json"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Order snapshots the service price at creation time; TotalAmount is never
// re-derived from the service afterwards. Status tracks fulfillment and
// PaymentStatus tracks settlement; the two axes move independently.
type Order struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	UserID          uint       `json:"user_id" gorm:"index"`
	User            User       `json:"-" gorm:"foreignKey:UserID"`
	ServiceID       uint       `json:"service_id" gorm:"index"`
	Service         Service    `json:"-" gorm:"foreignKey:ServiceID"`
	Status          string     `json:"status" gorm:"default:'pending'"`
	PaymentStatus   string     `json:"payment_status" gorm:"default:'pending'"`
	TotalAmount     float64    `json:"total_amount"`
	Currency        string     `json:"currency" gorm:"default:'$'"`
	FormData        JSON       `json:"form_data,omitempty" gorm:"type:json"`
	PaymentProvider string     `json:"payment_provider,omitempty"`
	ExternalID      string     `json:"external_id,omitempty"`
	CheckoutURL     string     `json:"checkout_url,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Ticket struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status" gorm:"default:'open'"`
	Priority  string    `json:"priority,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketMessage entries are append-only; UserID is nullable so a message
// survives any future author removal.
type TicketMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TicketID  uint      `json:"ticket_id" gorm:"index"`
	UserID    *uint     `json:"user_id,omitempty"`
	Message   string    `json:"message"`
	IsStaff   bool      `json:"is_staff" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailTemplate is keyed by an immutable slug; only subject and body are
// admin-editable after seeding.
type EmailTemplate struct {
	Slug    string `json:"slug" gorm:"primaryKey"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Setting holds one named configuration section (branding, billing, email)
// as an opaque JSON blob.
type Setting struct {
	Key   string `json:"key" gorm:"primaryKey"`
	Value JSON   `json:"value" gorm:"type:json"`
}

type FormTemplate struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schema      JSON      `json:"schema" gorm:"type:json"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// File is a shared or client-scoped download; a nil UserID means the file is
// visible to every client.
type File struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      *uint     `json:"user_id,omitempty" gorm:"index"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// All lists every model for migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Service{},
		&Order{},
		&Ticket{},
		&TicketMessage{},
		&EmailTemplate{},
		&Setting{},
		&FormTemplate{},
		&File{},
	}
}

// JSON stores raw JSON in a text/json column.
type JSON []byte

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = JSON(v)
		return nil
	case string:
		*j = JSON(v)
		return nil
	default:
		return errors.New("cannot scan into JSON")
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = JSON(data)
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// Decode unmarshals the blob into out; empty blobs decode to the zero value.
func (j JSON) Decode(out interface{}) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, out)
}

// MustJSON marshals v, panicking only on unmarshalable values (programmer error).
func MustJSON(v interface{}) JSON {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return JSON(data)
}
