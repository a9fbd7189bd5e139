package mapping

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed mappings.yaml
var defaultTables []byte

// Tables is the versioned, data-driven configuration behind the Mapper.
type Tables struct {
	Version             int                 `yaml:"version"`
	DeviceCategories    map[string][]string `yaml:"device_categories"`
	DefaultCategory     string              `yaml:"default_category"`
	EmptyCategoryTokens []string            `yaml:"empty_category_tokens"`
	EquipmentStatuses   map[string][]string `yaml:"equipment_statuses"`
	TicketStatuses      map[string][]string `yaml:"ticket_statuses"`
	IssueMarkers        []string            `yaml:"issue_markers"`
	NoneTokens          []string            `yaml:"none_tokens"`
	SponsorshipPrefix   string              `yaml:"sponsorship_prefix"`
	Staff               []StaffMember       `yaml:"staff"`
	Exceptions          Exceptions          `yaml:"exceptions"`
}

// StaffMember maps the free-text names used in legacy tickets to a person id.
type StaffMember struct {
	ID      int64    `yaml:"id"`
	Aliases []string `yaml:"aliases"`
}

// Exceptions enumerates the business exceptions that are keyed on specific ids.
type Exceptions struct {
	UnknownPersonID         int64             `yaml:"unknown_person_id"`
	DefaultIssuedBy         int64             `yaml:"default_issued_by"`
	VolunteerAffiliations   []int64           `yaml:"volunteer_affiliations"`
	SerialNumberDonors      []int64           `yaml:"serial_number_donors"`
	IgnoredInvoiceEquipment []InvoiceEquipment `yaml:"ignored_invoice_equipment"`
}

// InvoiceEquipment identifies one equipment reference on one invoice.
type InvoiceEquipment struct {
	Invoice   int64 `yaml:"invoice"`
	Equipment int64 `yaml:"equipment"`
}

// IsVolunteerAffiliation reports whether people of the legacy company code are volunteers.
func (e Exceptions) IsVolunteerAffiliation(code int64) bool {
	return containsID(e.VolunteerAffiliations, code)
}

// IsSerialNumberDonor reports whether the donor stored serial numbers in the optical devices field.
func (e Exceptions) IsSerialNumberDonor(donorID int64) bool {
	return containsID(e.SerialNumberDonors, donorID)
}

// IsIgnoredInvoiceLine reports whether the invoice line must be skipped.
func (e Exceptions) IsIgnoredInvoiceLine(invoiceID, equipmentID int64) bool {
	for _, ignored := range e.IgnoredInvoiceEquipment {
		if ignored.Invoice == invoiceID && ignored.Equipment == equipmentID {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// DefaultTables returns the embedded tables.
func DefaultTables() (Tables, error) {
	return ParseTables(defaultTables)
}

// LoadTables reads tables from path, falling back to the embedded defaults when path is empty.
func LoadTables(path string) (Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read mapping tables %s: %w", path, err)
	}
	return ParseTables(data)
}

// ParseTables decodes YAML mapping tables.
func ParseTables(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to decode mapping tables: %w", err)
	}
	if t.Version != 1 {
		return Tables{}, fmt.Errorf("unsupported mapping tables version %d", t.Version)
	}
	return t, nil
}
