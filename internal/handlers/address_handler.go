package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/reclaim/internal/errors"
	"github.com/stwalsh4118/reclaim/internal/middleware"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/services"
)

// AddressHandler serves postal code lookups and address checks.
type AddressHandler struct {
	service services.AddressService
}

// NewAddressHandler creates a new AddressHandler instance.
func NewAddressHandler(service services.AddressService) *AddressHandler {
	return &AddressHandler{
		service: service,
	}
}

// AddressCheckRequest represents the query parameters of the address check endpoint.
type AddressCheckRequest struct {
	PostalCode  string `form:"postal_code" binding:"required,max=16"`
	HouseNumber string `form:"house_number" binding:"required,max=16,printascii"`
	Street      string `form:"street" binding:"omitempty,max=255"`
}

// PostalCodeResponse lists the ranges of one postal code.
type PostalCodeResponse struct {
	PostalCode string            `json:"postal_code"`
	Ranges     []PostalCodeRange `json:"ranges"`
}

// PostalCodeRange is one house-number interval in the API response.
type PostalCodeRange struct {
	Street         string `json:"street,omitempty"`
	City           string `json:"city"`
	Municipality   string `json:"municipality"`
	Province       string `json:"province"`
	HouseNumberMin int    `json:"house_number_min,omitempty"`
	HouseNumberMax int    `json:"house_number_max,omitempty"`
	PostOfficeBox  bool   `json:"post_office_box"`
}

// AddressCheckResponse is the verdict on a checked address.
type AddressCheckResponse struct {
	PostalCode          string  `json:"postal_code"`
	HouseNumber         int     `json:"house_number"`
	HouseNumberAddition *string `json:"house_number_addition,omitempty"`
	Outcome             string  `json:"outcome"`
	CanonicalStreet     string  `json:"canonical_street,omitempty"`
}

// PostalCode handles GET /api/v1/postal-codes/:code.
func (h *AddressHandler) PostalCode(c *gin.Context) {
	code := c.Param("code")

	ranges, err := h.service.LookupPostalCode(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPostalCode):
			apierrors.BadRequest(c, err.Error(), map[string]interface{}{"postal_code": code})
		case errors.Is(err, services.ErrPostalCodeNotFound):
			apierrors.NotFound(c, "Postal code not found")
		default:
			apierrors.InternalServerError(c, "Failed to look up postal code", err)
		}
		return
	}

	resp := PostalCodeResponse{
		PostalCode: ranges[0].Code,
		Ranges:     make([]PostalCodeRange, 0, len(ranges)),
	}
	for _, r := range ranges {
		resp.Ranges = append(resp.Ranges, mapRangeToDTO(r))
	}
	c.JSON(http.StatusOK, resp)
}

// CheckAddress handles GET /api/v1/addresses/check.
// It reports how the migration would treat the address without changing anything.
func (h *AddressHandler) CheckAddress(c *gin.Context) {
	var req AddressCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing address check", map[string]interface{}{
			"postal_code":  req.PostalCode,
			"house_number": req.HouseNumber,
		})
	}

	check, err := h.service.CheckAddress(c.Request.Context(), services.AddressQuery{
		PostalCode:  req.PostalCode,
		HouseNumber: req.HouseNumber,
		Street:      req.Street,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidPostalCode) || errors.Is(err, services.ErrInvalidHouseNumber) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to check address", err)
		return
	}

	resp := AddressCheckResponse{
		PostalCode:          check.PostalCode,
		HouseNumberAddition: check.HouseNumberAddition,
		Outcome:             check.Outcome.String(),
		CanonicalStreet:     check.CanonicalStreet,
	}
	if check.HouseNumber != nil {
		resp.HouseNumber = *check.HouseNumber
	}
	c.JSON(http.StatusOK, resp)
}

func mapRangeToDTO(r models.PostalCodeRange) PostalCodeRange {
	dto := PostalCodeRange{
		City:          r.City,
		Municipality:  r.Municipality,
		Province:      r.Province,
		PostOfficeBox: r.PostOfficeBox,
	}
	if !r.PostOfficeBox {
		dto.Street = r.Street
		dto.HouseNumberMin = r.HouseNumberMin
		dto.HouseNumberMax = r.HouseNumberMax
	}
	return dto
}
