package orders

import (
	"time"

	"github.com/imrishuroy/landing-checkout/internal/validation"
)

// Order is one checkout submission. Rows are written once and never updated.
type Order struct {
	ID             string    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" dynamodbav:"id" json:"id"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now();autoCreateTime:false" dynamodbav:"created_at" json:"created_at"`
	Name           string    `gorm:"column:name;type:text;not null" dynamodbav:"name" json:"name"`
	Email          string    `gorm:"column:email;type:text;not null" dynamodbav:"email" json:"email"`
	Phone          string    `gorm:"column:phone;type:text;not null" dynamodbav:"phone" json:"phone"`
	Address1       string    `gorm:"column:address1;type:text;not null" dynamodbav:"address1" json:"address1"`
	Address2       string    `gorm:"column:address2;type:text" dynamodbav:"address2,omitempty" json:"address2,omitempty"`
	City           string    `gorm:"column:city;type:text;not null" dynamodbav:"city" json:"city"`
	State          string    `gorm:"column:state;type:text;not null" dynamodbav:"state" json:"state"`
	Country        string    `gorm:"column:country;type:text;not null" dynamodbav:"country" json:"country"`
	Pin            string    `gorm:"column:pin;type:text;not null" dynamodbav:"pin" json:"pin"`
	Qty            int       `gorm:"column:qty;type:integer;not null" dynamodbav:"qty" json:"qty"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;type:integer;not null" dynamodbav:"unit_price_cents" json:"unit_price_cents"`
	TotalCents     int       `gorm:"column:total_cents;type:integer;not null" dynamodbav:"total_cents" json:"total_cents"`
	UserAgent      string    `gorm:"column:user_agent;type:text" dynamodbav:"user_agent,omitempty" json:"user_agent,omitempty"`
	IP             string    `gorm:"column:ip;type:text" dynamodbav:"ip,omitempty" json:"ip,omitempty"`
}

// TableName pins the table name regardless of gorm's naming strategy.
func (Order) TableName() string { return "orders" }

// Receipt is returned to the buyer after a successful submission.
type Receipt struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	TotalCents int       `json:"total_cents"`
}

// RequestMeta is best-effort information about the submitting client.
type RequestMeta struct {
	UserAgent string
	IP        string
}

// HealthStatus is what the store reports to the health probe.
type HealthStatus struct {
	Now     time.Time `json:"now"`
	Version string    `json:"version"`
}

// OrderCreatedEvent is published after an order row is committed.
type OrderCreatedEvent struct {
	OrderID    string    `json:"order_id"`
	CreatedAt  time.Time `json:"created_at"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Qty        int       `json:"qty"`
	TotalCents int       `json:"total_cents"`
}

func newOrder(in validation.Input, unitPriceCents int, meta RequestMeta) *Order {
	return &Order{
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		Address1:       in.Address1,
		Address2:       in.Address2,
		City:           in.City,
		State:          in.State,
		Country:        in.Country,
		Pin:            in.Pin,
		Qty:            in.Qty,
		UnitPriceCents: unitPriceCents,
		TotalCents:     unitPriceCents * in.Qty,
		UserAgent:      meta.UserAgent,
		IP:             meta.IP,
	}
}

func (o *Order) receipt() Receipt {
	return Receipt{ID: o.ID, CreatedAt: o.CreatedAt, TotalCents: o.TotalCents}
}

func (o *Order) createdEvent() OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		CreatedAt:  o.CreatedAt,
		Name:       o.Name,
		Email:      o.Email,
		Qty:        o.Qty,
		TotalCents: o.TotalCents,
	}
}
