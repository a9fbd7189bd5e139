package postalcode

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/stwalsh4118/reclaim/internal/models"
)

// ErrMalformedReference is returned when the reference file does not have the expected shape.
var ErrMalformedReference = errors.New("malformed postal code reference")

// Load reads and indexes the reference file at path.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read postal code reference: %w", err)
	}
	return Parse(data)
}

// Parse indexes the hierarchical reference document
// provinces > municipalities > cities > {post_boxes, districts > neighborhoods > postal_codes}.
func Parse(data []byte) (*Index, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedReference)
	}
	provinces := gjson.GetBytes(data, "provinces")
	if !provinces.IsObject() {
		return nil, fmt.Errorf("%w: missing provinces", ErrMalformedReference)
	}

	var (
		ranges []models.PostalCodeRange
		err    error
	)
	provinces.ForEach(func(province, provinceNode gjson.Result) bool {
		provinceNode.Get("municipalities").ForEach(func(municipality, municipalityNode gjson.Result) bool {
			municipalityNode.Get("cities").ForEach(func(city, cityNode gjson.Result) bool {
				base := models.PostalCodeRange{
					Province:     province.String(),
					Municipality: municipality.String(),
					City:         city.String(),
				}
				var found []models.PostalCodeRange
				found, err = parseCity(base, cityNode)
				ranges = append(ranges, found...)
				return err == nil
			})
			return err == nil
		})
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	return NewIndex(ranges)
}

func parseCity(base models.PostalCodeRange, city gjson.Result) ([]models.PostalCodeRange, error) {
	var ranges []models.PostalCodeRange

	city.Get("post_boxes").ForEach(func(code, url gjson.Result) bool {
		box := base
		box.Code = code.String()
		box.URL = url.String()
		box.PostOfficeBox = true
		ranges = append(ranges, box)
		return true
	})

	var err error
	city.Get("districts").ForEach(func(district, districtNode gjson.Result) bool {
		districtNode.Get("neighborhoods").ForEach(func(neighbourhood, neighbourhoodNode gjson.Result) bool {
			neighbourhoodNode.Get("postal_codes").ForEach(func(code, entry gjson.Result) bool {
				entries := []gjson.Result{entry}
				if entry.IsArray() {
					entries = entry.Array()
				}
				for _, e := range entries {
					r := base
					r.Code = code.String()
					r.District = district.String()
					r.Neighbourhood = neighbourhood.String()
					r.Street = e.Get("street").String()
					r.URL = e.Get("url").String()
					r.HouseNumberMin, r.HouseNumberMax, err = parseNumbers(e.Get("numbers").String())
					if err != nil {
						err = fmt.Errorf("%w: %s/%s postal code %s: %v",
							ErrMalformedReference, base.City, neighbourhood.String(), r.Code, err)
						return false
					}
					ranges = append(ranges, r)
				}
				return true
			})
			return err == nil
		})
		return err == nil
	})

	return ranges, err
}

// parseNumbers reads a "min-max" house number range; a single number is a range of one.
func parseNumbers(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, errors.New("empty number range")
	}
	lo, hi, found := strings.Cut(s, "-")
	lower, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("number range %q: %w", s, err)
	}
	if !found {
		return lower, lower, nil
	}
	upper, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("number range %q: %w", s, err)
	}
	return lower, upper, nil
}
