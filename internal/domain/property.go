// Package domain provides domain models and validation for the property service.
package domain

import "strconv"

// EntityProperty is the entity name used in typed errors.
const EntityProperty = "property"

// Property is a listed real-estate property.
type Property struct {
	// ID is assigned by the store and never changes after creation.
	ID        int64   `json:"id"`
	Address   string  `json:"address"`
	Price     float64 `json:"price"`
	Bedrooms  float64 `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	// Type is free-form ("House", "Townhouse", ...). Nil when never set.
	Type *string `json:"type"`
}

// Clone returns a deep copy of p.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	c := *p
	if p.Type != nil {
		t := *p.Type
		c.Type = &t
	}
	return &c
}

// TypeValue returns the property type or "" when unset.
func (p *Property) TypeValue() string {
	if p.Type == nil {
		return ""
	}
	return *p.Type
}

// PropertyInput holds the fields supplied in a create or update payload.
// A nil field was absent from the payload.
type PropertyInput struct {
	Address   *string
	Price     *float64
	Bedrooms  *float64
	Bathrooms *float64
	Type      *string
}

// NewProperty builds an unsaved Property from the input. Absent fields take
// their zero value; callers validate with CreateRequiredFields first.
func (in PropertyInput) NewProperty() *Property {
	p := &Property{}
	in.ApplyTo(p)
	return p
}

// ApplyTo merges the supplied fields onto p, leaving absent fields untouched.
func (in PropertyInput) ApplyTo(p *Property) {
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.Type != nil {
		t := *in.Type
		p.Type = &t
	}
}

// IsEmpty reports whether no field was supplied.
func (in PropertyInput) IsEmpty() bool {
	return in.Address == nil && in.Price == nil && in.Bedrooms == nil &&
		in.Bathrooms == nil && in.Type == nil
}

// FormatID renders a property id for error messages and cache keys.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
