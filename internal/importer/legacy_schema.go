package importer

// Legacy export tables and the columns read from them.
const (
	tblDonors         = "Tbl_Bedrijven_NAW"
	tblPersons        = "Tbl_Gebruikers_NAW"
	tblEquipment      = "Tbl_computers"
	tblTickets        = "Tbl_Reparaties_main"
	tblTicketHistory  = "tbl_reparaties_uitgediept"
	tblInvoices       = "Tbl_factuur"
	tblInvoiceLines   = "Tbl_factuur_omschrijvingen"
	tblAttendance     = "Tbl_Presentielijst"
	colDonorID        = "bedrijfsnummer"
	colPersonID       = "gebruikersnummer"
	colEquipmentID    = "computernummer"
	colTicketID       = "reparatienummer"
	colInvoiceID      = "factuurnummer"
	colAttendanceID   = "id"
	colPersonRegister = "datum inschrijving"
	colDonated        = "datum gift"
	colIntake         = "datum inname"
	colInvoiceDate    = "datum"
	colAttendanceDate = "datum"
	colHistoryDate    = "datum"
)
