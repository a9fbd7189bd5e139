package models

import "time"

// ProofOfIssue documents that one piece of equipment was handed to a recipient.
type ProofOfIssue struct {
	ID          int64
	IssueDate   *time.Time
	IssuedBy    int64
	BehalfOfID  *int64
	RecipientID *int64
	EquipmentID int64
	Lines       []ProofOfIssueLine
}

// Row maps the header onto the proof_of_issues table.
func (p ProofOfIssue) Row() Row {
	row := Row{
		"id":           p.ID,
		"issued_by":    p.IssuedBy,
		"equipment_id": p.EquipmentID,
	}
	row.set("issue_date", p.IssueDate)
	row.set("behalf_of_id", p.BehalfOfID)
	row.set("recipient_id", p.RecipientID)
	return row
}

// ProofOfIssueLine is one descriptive line of a proof of issue, numbered from 1.
type ProofOfIssueLine struct {
	ProofOfIssueID int64
	LineID         int
	Description    *string
}

// Row maps the line onto the proof_of_issue_lines table.
func (l ProofOfIssueLine) Row() Row {
	row := Row{"proof_of_issue_id": l.ProofOfIssueID, "line_id": l.LineID}
	row.set("description", l.Description)
	return row
}
