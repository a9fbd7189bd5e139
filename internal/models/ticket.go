package models

import "time"

// Ticket is a repair or issue request for a piece of equipment.
type Ticket struct {
	ID          int64
	Type        TicketType
	Subject     *string
	Description *string
	EquipmentID *int64
	Registered  time.Time
}

// Row maps the ticket onto the tickets table.
func (t Ticket) Row() Row {
	row := Row{
		"id":          t.ID,
		"ticket_type": string(t.Type),
		"registered":  t.Registered,
	}
	row.set("subject", t.Subject)
	row.set("description", t.Description)
	row.set("equipment_id", t.EquipmentID)
	return row
}

// DetailRow maps a property onto the ticket_details table.
func DetailRow(ticketID int64, p Property) Row {
	return Row{"ticket_id": ticketID, "name": p.Name, "value": p.Value}
}

// TicketStatusEvent records a status transition of a ticket.
type TicketStatusEvent struct {
	TicketID    int64
	Date        time.Time
	VolunteerID int64
	Status      TicketStatus
}

// Row maps the event onto the ticket_status table.
func (e TicketStatusEvent) Row() Row {
	return Row{
		"ticket_id":    e.TicketID,
		"date":         e.Date,
		"volunteer_id": e.VolunteerID,
		"status":       string(e.Status),
	}
}

// TicketLogEntry is a free-text note on a ticket.
type TicketLogEntry struct {
	TicketID    int64
	Date        time.Time
	VolunteerID int64
	Log         string
}

// Row maps the entry onto the ticket_log table.
func (e TicketLogEntry) Row() Row {
	return Row{
		"ticket_id":    e.TicketID,
		"date":         e.Date,
		"volunteer_id": e.VolunteerID,
		"log":          e.Log,
	}
}
