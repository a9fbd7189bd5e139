// Package postalcode holds the immutable postal-code range index.
package postalcode

import (
	"fmt"
	"sort"

	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/normalize"
)

// Conflict describes two reference ranges of one code that overlap.
// Lookups resolve to Kept.
type Conflict struct {
	Kept    models.PostalCodeRange
	Shadows models.PostalCodeRange
}

// Index answers address coverage questions. It is never mutated after construction
// and is safe for concurrent use.
type Index struct {
	ranges    []models.PostalCodeRange
	byCode    map[string][]models.PostalCodeRange
	conflicts []Conflict
}

// NewIndex builds an index over ranges.
func NewIndex(ranges []models.PostalCodeRange) (*Index, error) {
	ix := &Index{
		ranges: make([]models.PostalCodeRange, 0, len(ranges)),
		byCode: make(map[string][]models.PostalCodeRange),
	}

	for _, r := range ranges {
		code := normalize.PostalCode(r.Code)
		if code == nil {
			return nil, fmt.Errorf("postal code range without code in %s", r.City)
		}
		r.Code = *code
		if !r.PostOfficeBox && r.HouseNumberMin > r.HouseNumberMax {
			return nil, fmt.Errorf("postal code %s: house number range %d-%d is inverted",
				r.Code, r.HouseNumberMin, r.HouseNumberMax)
		}
		ix.ranges = append(ix.ranges, r)
		if !r.PostOfficeBox {
			ix.byCode[r.Code] = append(ix.byCode[r.Code], r)
		}
	}

	for code, list := range ix.byCode {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].HouseNumberMin < list[j].HouseNumberMin
		})
		// widest is the earlier range reaching furthest up the street.
		widest := 0
		for i := 1; i < len(list); i++ {
			if list[i].HouseNumberMin <= list[widest].HouseNumberMax {
				ix.conflicts = append(ix.conflicts, Conflict{Kept: list[widest], Shadows: list[i]})
			}
			if list[i].HouseNumberMax > list[widest].HouseNumberMax {
				widest = i
			}
		}
		ix.byCode[code] = list
	}
	sort.SliceStable(ix.conflicts, func(i, j int) bool {
		a, b := ix.conflicts[i], ix.conflicts[j]
		if a.Kept.Code != b.Kept.Code {
			return a.Kept.Code < b.Kept.Code
		}
		return a.Shadows.HouseNumberMin < b.Shadows.HouseNumberMin
	})

	return ix, nil
}

// Lookup returns the range of code that covers houseNumber.
func (ix *Index) Lookup(code string, houseNumber *int) (models.PostalCodeRange, bool) {
	normalized := normalize.PostalCode(code)
	if normalized == nil || houseNumber == nil {
		return models.PostalCodeRange{}, false
	}
	for _, r := range ix.byCode[*normalized] {
		if r.Covers(*houseNumber) {
			return r, true
		}
	}
	return models.PostalCodeRange{}, false
}

// CoversAddress reports whether some range of code contains houseNumber.
// A blank code or missing number is never covered.
func (ix *Index) CoversAddress(code string, houseNumber *int) bool {
	_, ok := ix.Lookup(code, houseNumber)
	return ok
}

// CanonicalStreet returns the street of the range covering the address.
func (ix *Index) CanonicalStreet(code string, houseNumber *int) (string, bool) {
	r, ok := ix.Lookup(code, houseNumber)
	if !ok {
		return "", false
	}
	return r.Street, true
}

// RangesFor returns the street ranges of a single postal code, ordered by house number.
func (ix *Index) RangesFor(code string) []models.PostalCodeRange {
	normalized := normalize.PostalCode(code)
	if normalized == nil {
		return nil
	}
	list := ix.byCode[*normalized]
	out := make([]models.PostalCodeRange, len(list))
	copy(out, list)
	return out
}

// Ranges returns every range, post-office boxes included, in reference file order.
func (ix *Index) Ranges() []models.PostalCodeRange {
	out := make([]models.PostalCodeRange, len(ix.ranges))
	copy(out, ix.ranges)
	return out
}

// Conflicts returns overlapping reference ranges.
func (ix *Index) Conflicts() []Conflict {
	return ix.conflicts
}

// Len returns the number of ranges.
func (ix *Index) Len() int {
	return len(ix.ranges)
}
