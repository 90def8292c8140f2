// Package civic holds the data model shared by the government, business and
// public portals.
package civic

import (
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for deadlines.
const DateLayout = "2006-01-02"

func init() {
	// The backend speaks plain JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

// Need is a government-posted request for goods or services.
type Need struct {
	Department  string          `json:"department,omitempty" mapstructure:"department"`
	Title       string          `json:"title" mapstructure:"title"`
	Description string          `json:"description,omitempty" mapstructure:"description"`
	Category    string          `json:"category" mapstructure:"category"`
	Budget      decimal.Decimal `json:"budget" mapstructure:"budget" validate:"gte=0"`
	Location    string          `json:"location,omitempty" mapstructure:"location"`
	Deadline    string          `json:"deadline,omitempty" mapstructure:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// Validate checks the need before it is posted.
func (n *Need) Validate() error {
	return newValidator().Struct(n)
}

// Procurement is a posted need as stored by the backend.
type Procurement struct {
	ID string `json:"id"`
	Need
	PostedDate time.Time `json:"postedDate"`
}

// Candidate is a business that can be matched against a need.
type Candidate struct {
	Name                 string   `json:"name" mapstructure:"name"`
	Address              string   `json:"address,omitempty" mapstructure:"address"`
	Rating               *float64 `json:"rating,omitempty" mapstructure:"rating"`
	Reviews              *int     `json:"reviews,omitempty" mapstructure:"reviews"`
	Categories           []string `json:"categories,omitempty" mapstructure:"categories"`
	IsChain              bool     `json:"is_chain,omitempty" mapstructure:"is_chain"`
	GovernmentRegistered bool     `json:"government_registered,omitempty" mapstructure:"government_registered"`
	DistanceMiles        *float64 `json:"distance_miles,omitempty" mapstructure:"distance_miles"`
	Phone                string   `json:"phone,omitempty" mapstructure:"phone"`
	Website              string   `json:"website,omitempty" mapstructure:"website"`
	MapsURL              string   `json:"maps_url,omitempty" mapstructure:"maps_url"`
	URL                  string   `json:"url,omitempty" mapstructure:"url"`
	Source               string   `json:"source,omitempty" mapstructure:"source"`
}

// ScoredCandidate is a candidate with its match score attached.
type ScoredCandidate struct {
	Candidate
	MatchScore int `json:"matchScore"`
}

// Notification is a snapshot of a procurement at the moment a vendor was notified.
type Notification struct {
	ID            string          `json:"id"`
	ProcurementID string          `json:"procurementId"`
	Title         string          `json:"title"`
	Department    string          `json:"department"`
	Location      string          `json:"location"`
	Budget        decimal.Decimal `json:"budget"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Deadline      string          `json:"deadline"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// BusinessInfo identifies the bidder.
type BusinessInfo struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Proposal is a bid submitted by a business for a procurement.
type Proposal struct {
	ID            string          `json:"id,omitempty"`
	ProcurementID string          `json:"procurementId" validate:"required"`
	BusinessInfo  BusinessInfo    `json:"businessInfo"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	Timeline      string          `json:"timeline,omitempty"`
	Description   string          `json:"description,omitempty"`
	Experience    string          `json:"experience,omitempty"`
	SubmittedDate time.Time       `json:"submittedDate"`
}

// Validate checks the proposal before it is submitted or stored.
func (p *Proposal) Validate() error {
	return newValidator().Struct(p)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}
