package models

// PostalCodeRange is one house-number interval of a postal code with its
// canonical street. Post-office boxes carry no street or interval.
type PostalCodeRange struct {
	Code           string
	Province       string
	Municipality   string
	City           string
	District       string
	Neighbourhood  string
	Street         string
	HouseNumberMin int
	HouseNumberMax int
	URL            string
	PostOfficeBox  bool
}

// Covers reports whether the range contains houseNumber.
func (p PostalCodeRange) Covers(houseNumber int) bool {
	if p.PostOfficeBox {
		return false
	}
	return p.HouseNumberMin <= houseNumber && houseNumber <= p.HouseNumberMax
}

// Row maps the range onto the postal_codes table.
func (p PostalCodeRange) Row() Row {
	row := Row{
		"code":         p.Code,
		"province":     p.Province,
		"municipality": p.Municipality,
		"city":         p.City,
		"pobox":        p.PostOfficeBox,
	}
	if p.URL != "" {
		row["url"] = p.URL
	}
	if p.PostOfficeBox {
		return row
	}
	row["district"] = p.District
	row["neighbourhood"] = p.Neighbourhood
	row["street"] = p.Street
	row["house_number_min"] = p.HouseNumberMin
	row["house_number_max"] = p.HouseNumberMax
	return row
}
