package models

// Target table names.
const (
	TablePostalCodes            = "postal_codes"
	TableActivities             = "activities"
	TableDonors                 = "donors"
	TablePersons                = "persons"
	TablePersonRoles            = "person_roles"
	TableEquipment              = "equipment"
	TableEquipmentSpecification = "equipment_specification"
	TableTickets                = "tickets"
	TableTicketDetails          = "ticket_details"
	TableTicketStatus           = "ticket_status"
	TableTicketLog              = "ticket_log"
	TableTimesheets             = "timesheets"
	TableProofOfIssues          = "proof_of_issues"
	TableProofOfIssueLines      = "proof_of_issue_lines"
)
