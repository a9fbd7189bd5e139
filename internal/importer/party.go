package importer

import (
	"github.com/stwalsh4118/reclaim/internal/address"
	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/normalize"
)

// addressColumns names the legacy columns holding an address.
type addressColumns struct {
	postalCode  string
	street      string
	houseNumber string
	city        string
}

// readAddress normalizes the address of rec and keeps the values as written
// for the comment of a rejected address.
func readAddress(rec legacy.Record, cols addressColumns) (models.Address, address.Original, error) {
	var addr models.Address

	postal, err := rec.Text(cols.postalCode)
	if err != nil {
		return addr, address.Original{}, err
	}
	if postal != nil {
		addr.PostalCode = normalize.PostalCode(*postal)
	}

	if addr.Street, err = rec.Text(cols.street); err != nil {
		return addr, address.Original{}, err
	}

	house, err := rec.Text(cols.houseNumber)
	if err != nil {
		return addr, address.Original{}, err
	}
	if addr.HouseNumber, addr.HouseNumberAddition, err = normalize.SplitHouseNumber(normalize.Value(house)); err != nil {
		return addr, address.Original{}, err
	}

	if addr.City, err = rec.Text(cols.city); err != nil {
		return addr, address.Original{}, err
	}

	original := address.Original{
		PostalCode:          rec.RawText(cols.postalCode),
		Street:              rec.RawText(cols.street),
		HouseNumber:         rec.RawText(cols.houseNumber),
		HouseNumberAddition: addr.HouseNumberAddition,
	}
	return addr, original, nil
}

// readEmail cleans and lower-cases an email column.
func readEmail(rec legacy.Record, column string) (*string, error) {
	email, err := rec.Text(column)
	if err != nil || email == nil {
		return nil, err
	}
	return normalize.Email(*email), nil
}

// readPhones classifies the given phone columns, later columns winning.
func readPhones(rec legacy.Record, columns ...string) (normalize.Phones, error) {
	candidates := make([]string, 0, len(columns))
	for _, column := range columns {
		phone, err := rec.Text(column)
		if err != nil {
			return normalize.Phones{}, err
		}
		candidates = append(candidates, normalize.Value(phone))
	}
	return normalize.ClassifyPhones(candidates...), nil
}

// texts reads several text columns into the given targets.
func texts(rec legacy.Record, targets map[string]**string) error {
	for column, target := range targets {
		value, err := rec.Text(column)
		if err != nil {
			return err
		}
		*target = value
	}
	return nil
}
