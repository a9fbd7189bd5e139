package models

import "time"

// Equipment is a single device registered with the organisation.
type Equipment struct {
	ID           int64
	Category     Category
	Manufacturer *string
	Model        *string
	SerialNumber *string
	OwnerID      *int64
	DonorID      *int64
	BehalfOfID   *int64
	Status       *EquipmentStatus
	Registered   time.Time
}

// Row maps the equipment onto the equipment table.
func (e Equipment) Row() Row {
	row := Row{
		"id":         e.ID,
		"category":   string(e.Category),
		"registered": e.Registered,
	}
	row.set("manufacturer", e.Manufacturer)
	row.set("model", e.Model)
	row.set("serial_number", e.SerialNumber)
	row.set("owner_id", e.OwnerID)
	row.set("donor_id", e.DonorID)
	row.set("behalf_of_id", e.BehalfOfID)
	if e.Status != nil {
		row["status"] = string(*e.Status)
	}
	return row
}

// Property is a name/value pair attached to equipment or tickets.
type Property struct {
	Name  string
	Value string
}

// SpecificationRow maps a property onto the equipment_specification table.
func SpecificationRow(equipmentID int64, p Property) Row {
	return Row{"equipment_id": equipmentID, "name": p.Name, "value": p.Value}
}
