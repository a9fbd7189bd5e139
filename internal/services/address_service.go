package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/stwalsh4118/reclaim/internal/address"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/normalize"
)

// Service-level errors
var (
	ErrInvalidPostalCode  = errors.New("invalid postal code")
	ErrPostalCodeNotFound = errors.New("postal code not found")
	ErrInvalidHouseNumber = errors.New("invalid house number")
)

// postalCodePattern matches a normalized Dutch postal code.
var postalCodePattern = regexp.MustCompile(`^[1-9][0-9]{3}[A-Z]{2}$`)

// PostalIndex is the read side of the postal code index.
type PostalIndex interface {
	address.Index
	RangesFor(code string) []models.PostalCodeRange
}

// AddressQuery is an address as entered by a user.
type AddressQuery struct {
	PostalCode  string
	HouseNumber string
	Street      string
}

// AddressCheck is the verdict on an AddressQuery.
type AddressCheck struct {
	PostalCode          string
	HouseNumber         *int
	HouseNumberAddition *string
	Outcome             address.Outcome
	CanonicalStreet     string
}

// AddressService defines the interface for address lookups.
type AddressService interface {
	// LookupPostalCode returns the ranges of code, ordered by house number.
	// Returns ErrInvalidPostalCode if code is not a postal code.
	// Returns ErrPostalCodeNotFound if the index has no range for code.
	LookupPostalCode(ctx context.Context, code string) ([]models.PostalCodeRange, error)

	// CheckAddress evaluates q the way the importers do, without changing anything.
	// Returns ErrInvalidPostalCode or ErrInvalidHouseNumber for malformed input.
	CheckAddress(ctx context.Context, q AddressQuery) (*AddressCheck, error)
}

// addressService is the concrete implementation of AddressService.
type addressService struct {
	index PostalIndex
	log   *logger.Logger
}

// NewAddressService creates a new instance of AddressService.
func NewAddressService(index PostalIndex, log *logger.Logger) AddressService {
	return &addressService{
		index: index,
		log:   log,
	}
}

func (s *addressService) postalCode(raw string) (string, error) {
	code := normalize.PostalCode(raw)
	if code == nil || !postalCodePattern.MatchString(*code) {
		s.log.Warn("Invalid postal code provided", map[string]interface{}{"postal_code": raw})
		return "", fmt.Errorf("%w: %q", ErrInvalidPostalCode, raw)
	}
	return *code, nil
}

// LookupPostalCode returns every range of the postal code.
func (s *addressService) LookupPostalCode(ctx context.Context, code string) ([]models.PostalCodeRange, error) {
	normalized, err := s.postalCode(code)
	if err != nil {
		return nil, err
	}

	ranges := s.index.RangesFor(normalized)
	if len(ranges) == 0 {
		s.log.Debug("No ranges for postal code", map[string]interface{}{"postal_code": normalized})
		return nil, ErrPostalCodeNotFound
	}

	s.log.Info("Postal code found", map[string]interface{}{
		"postal_code": normalized,
		"ranges":      len(ranges),
	})
	return ranges, nil
}

// CheckAddress normalizes q and evaluates it against the index.
func (s *addressService) CheckAddress(ctx context.Context, q AddressQuery) (*AddressCheck, error) {
	code, err := s.postalCode(q.PostalCode)
	if err != nil {
		return nil, err
	}

	number, addition, err := normalize.SplitHouseNumber(q.HouseNumber)
	if err != nil || number == nil {
		s.log.Warn("Invalid house number provided", map[string]interface{}{"house_number": q.HouseNumber})
		return nil, fmt.Errorf("%w: %q", ErrInvalidHouseNumber, q.HouseNumber)
	}

	addr := models.Address{
		PostalCode:          &code,
		HouseNumber:         number,
		HouseNumberAddition: addition,
		Street:              normalize.Text(q.Street),
	}
	verdict := address.Evaluate(s.index, addr)

	s.log.Info("Address checked", map[string]interface{}{
		"postal_code":  code,
		"house_number": *number,
		"outcome":      verdict.Outcome.String(),
	})

	return &AddressCheck{
		PostalCode:          code,
		HouseNumber:         number,
		HouseNumberAddition: addition,
		Outcome:             verdict.Outcome,
		CanonicalStreet:     verdict.CanonicalStreet,
	}, nil
}
