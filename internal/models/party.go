package models

import "time"

// Address is the postal address of a person or donor.
type Address struct {
	PostalCode          *string
	Street              *string
	HouseNumber         *int
	HouseNumberAddition *string
	City                *string
}

// IsEmpty reports whether no address component that can be validated is present.
func (a Address) IsEmpty() bool {
	return a.PostalCode == nil && a.Street == nil && a.HouseNumber == nil
}

// Clear drops every component except the city.
func (a *Address) Clear() {
	a.PostalCode = nil
	a.Street = nil
	a.HouseNumber = nil
	a.HouseNumberAddition = nil
}

func (a Address) fill(row Row) {
	row.set("postal_code", a.PostalCode)
	row.set("street", a.Street)
	row.set("house_number", a.HouseNumber)
	row.set("house_number_addition", a.HouseNumberAddition)
	row.set("city", a.City)
}

// Contact holds the reachability fields shared by persons and donors.
type Contact struct {
	Email     *string
	Mobile    *string
	Telephone *string
}

func (c Contact) fill(row Row) {
	row.set("email", c.Email)
	row.set("mobile", c.Mobile)
	row.set("telephone", c.Telephone)
}

// Person is an individual known to the organisation: customer, recipient or volunteer.
type Person struct {
	ID          int64
	Initials    *string
	FirstName   *string
	Infix       *string
	LastName    *string
	DateOfBirth *time.Time
	Contact
	Address
	Registered time.Time
	Comments   *string
	Snapshot   string
}

// Row maps the person onto the persons table.
func (p Person) Row() Row {
	row := Row{"id": p.ID, "registered": p.Registered}
	row.set("initials", p.Initials)
	row.set("first_name", p.FirstName)
	row.set("infix", p.Infix)
	row.set("last_name", p.LastName)
	row.set("date_of_birth", p.DateOfBirth)
	p.Contact.fill(row)
	p.Address.fill(row)
	row.set("comments", p.Comments)
	if p.Snapshot != "" {
		row["msaccess"] = p.Snapshot
	}
	return row
}

// Donor is a company or organisation that gives equipment.
type Donor struct {
	ID   int64
	Name *string
	Contact
	Address
	Registered time.Time
	Comments   *string
	Snapshot   string
}

// Row maps the donor onto the donors table.
func (d Donor) Row() Row {
	row := Row{"id": d.ID, "registered": d.Registered}
	row.set("name", d.Name)
	d.Contact.fill(row)
	d.Address.fill(row)
	row.set("comments", d.Comments)
	if d.Snapshot != "" {
		row["msaccess"] = d.Snapshot
	}
	return row
}

// PersonRole grants an authority to a person.
type PersonRole struct {
	PersonID  int64
	Authority string
}

// Row maps the role onto the person_roles table.
func (r PersonRole) Row() Row {
	return Row{"person_id": r.PersonID, "authority": r.Authority}
}
