package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxNameLength        = 100
	MaxTypeLength        = 50
	MaxLocationLength    = 100
	MaxDescriptionLength = 500

	MinCommissioningYear = 1900
	MaxCommissioningYear = 2100

	MinEfficiency = 0.0
	MaxEfficiency = 100.0
)

var ErrEnergyObjectNotFound = errors.New("energy object not found")

// EnergyObject is a power-generation facility tracked by the registry.
type EnergyObject struct {
	ID                  int64      `json:"id" bson:"_id"`
	Name                string     `json:"name" bson:"name"`
	Type                string     `json:"type" bson:"type"`
	Location            string     `json:"location" bson:"location"`
	Power               float64    `json:"power" bson:"power"`
	CommissioningYear   int        `json:"commissioning_year" bson:"commissioning_year"`
	Efficiency          float64    `json:"efficiency" bson:"efficiency"`
	Active              bool       `json:"active" bson:"active"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date,omitempty" bson:"last_maintenance_date,omitempty"`
	Description         string     `json:"description,omitempty" bson:"description,omitempty"`
}

// Validate checks every field constraint and reports all violations at once.
func (o *EnergyObject) Validate() error {
	ve := &ValidationError{}

	checkText(ve, "name", o.Name, MaxNameLength, true)
	checkText(ve, "type", o.Type, MaxTypeLength, true)
	checkText(ve, "location", o.Location, MaxLocationLength, true)
	checkText(ve, "description", o.Description, MaxDescriptionLength, false)

	if o.Power < 0 {
		ve.Add("power", "must not be negative")
	}
	if o.CommissioningYear < MinCommissioningYear || o.CommissioningYear > MaxCommissioningYear {
		ve.Add("commissioning_year", "must be between 1900 and 2100")
	}
	if o.Efficiency < MinEfficiency || o.Efficiency > MaxEfficiency {
		ve.Add("efficiency", "must be between 0 and 100")
	}

	return ve.OrNil()
}

// Normalize trims surrounding whitespace from the text fields and drops the
// time-of-day from the maintenance date.
func (o *EnergyObject) Normalize() {
	o.Name = strings.TrimSpace(o.Name)
	o.Type = strings.TrimSpace(o.Type)
	o.Location = strings.TrimSpace(o.Location)
	o.Description = strings.TrimSpace(o.Description)
	if o.LastMaintenanceDate != nil {
		d := o.LastMaintenanceDate.UTC()
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		o.LastMaintenanceDate = &day
	}
}

// ApplyFrom overwrites every mutable field with the values of src. The ID is
// left untouched.
func (o *EnergyObject) ApplyFrom(src *EnergyObject) {
	o.Name = src.Name
	o.Type = src.Type
	o.Location = src.Location
	o.Power = src.Power
	o.CommissioningYear = src.CommissioningYear
	o.Efficiency = src.Efficiency
	o.Active = src.Active
	o.LastMaintenanceDate = src.LastMaintenanceDate
	o.Description = src.Description
}

// Clone returns a deep copy.
func (o *EnergyObject) Clone() *EnergyObject {
	c := *o
	if o.LastMaintenanceDate != nil {
		d := *o.LastMaintenanceDate
		c.LastMaintenanceDate = &d
	}
	return &c
}

func checkText(ve *ValidationError, field, value string, limit int, required bool) {
	if required && strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
		return
	}
	if utf8.RuneCountInString(value) > limit {
		ve.Add(field, "must be at most "+strconv.Itoa(limit)+" characters")
	}
}
