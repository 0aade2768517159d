package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/freightrates/internal/apperrors"
	"github.com/guttosm/freightrates/internal/domain/dto"
	"github.com/guttosm/freightrates/internal/service"
)

// maxLocationLength matches the max=200 tag on the upload codes.
const maxLocationLength = 200

// Uploader is the write path the upload endpoints drive.
type Uploader interface {
	Ingest(ctx context.Context, req service.UploadRequest) (*service.UploadResult, error)
}

// Handler provides HTTP handlers for the rates and upload endpoints.
//
// Responsibilities:
//   - Validate path parameters and JSON bodies
//   - Delegate to the rates service and the upload reconciler
//   - Translate results into the list-wrapped response envelopes
//
// Errors are attached with c.Error and rendered by middleware.ErrorHandler.
type Handler struct {
	rates   service.RatesService
	uploads Uploader
}

// NewHandler constructs a new Handler instance.
func NewHandler(rates service.RatesService, uploads Uploader) *Handler {
	return &Handler{rates: rates, uploads: uploads}
}

// GetRates godoc
// @Summary      Daily average prices
// @Description  Average price per day between two ports or regions, inclusive of both dates. Days without prices are omitted.
// @Tags         rates
// @Produce      json
// @Param        date_from    path      string  true  "Start date (YYYY-MM-DD)" example(2016-01-01)
// @Param        date_to      path      string  true  "End date (YYYY-MM-DD)" example(2016-01-10)
// @Param        origin       path      string  true  "Origin port code or region slug" example(CNSGH)
// @Param        destination  path      string  true  "Destination port code or region slug" example(north_europe_main)
// @Success      200          {array}   dto.RatesEnvelope  "Success"
// @Failure      400          {array}   dto.ErrorEnvelope  "Bad Request"
// @Failure      500          {array}   dto.ErrorEnvelope  "Internal Error"
// @Router       /api/rates/{date_from}/{date_to}/{origin}/{destination}/ [get]
func (h *Handler) GetRates(c *gin.Context) {
	h.serveRates(c, false)
}

// GetRatesNull godoc
// @Summary      Daily average prices with low-confidence suppression
// @Description  Same as /api/rates, but days backed by fewer than 3 prices report average_price as the string "null".
// @Tags         rates
// @Produce      json
// @Param        date_from    path      string  true  "Start date (YYYY-MM-DD)" example(2016-01-01)
// @Param        date_to      path      string  true  "End date (YYYY-MM-DD)" example(2016-01-10)
// @Param        origin       path      string  true  "Origin port code or region slug" example(CNSGH)
// @Param        destination  path      string  true  "Destination port code or region slug" example(north_europe_main)
// @Success      200          {array}   dto.RatesEnvelope  "Success"
// @Failure      400          {array}   dto.ErrorEnvelope  "Bad Request"
// @Failure      500          {array}   dto.ErrorEnvelope  "Internal Error"
// @Router       /api/rates_null/{date_from}/{date_to}/{origin}/{destination}/ [get]
func (h *Handler) GetRatesNull(c *gin.Context) {
	h.serveRates(c, true)
}

func (h *Handler) serveRates(c *gin.Context, suppress bool) {
	from, err := service.ParseDay(c.Param("date_from"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	to, err := service.ParseDay(c.Param("date_to"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	origin, destination := c.Param("origin"), c.Param("destination")
	for _, p := range []struct{ name, value string }{{"origin", origin}, {"destination", destination}} {
		if len(p.value) > maxLocationLength {
			_ = c.Error(apperrors.Validation(fmt.Sprintf("%s must be at most %d characters", p.name, maxLocationLength)))
			return
		}
	}

	days, err := h.rates.GetRates(c.Request.Context(), service.RatesQuery{
		DateFrom:              from,
		DateTo:                to,
		Origin:                origin,
		Destination:           destination,
		SuppressLowConfidence: suppress,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRatesResponse(days))
}

// UploadPrice godoc
// @Summary      Upload daily prices
// @Description  Stores one price per day of the inclusive range for a route. Prices are in the reference currency.
// @Tags         upload
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UploadPriceRequest  true  "Prices"
// @Success      201   {array}   dto.UploadEnvelope  "Data successfully ingested"
// @Failure      400   {array}   dto.ErrorEnvelope   "Bad Request"
// @Failure      422   {array}   dto.UploadEnvelope  "Failed to ingest data"
// @Router       /api/upload_price/ [post]
func (h *Handler) UploadPrice(c *gin.Context) {
	var req dto.UploadPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err))
		return
	}
	h.ingest(c, req, "")
}

// UploadCurrencyPrice godoc
// @Summary      Upload daily prices in a foreign currency
// @Description  Converts every price from currency_code into the reference currency, then stores them like /api/upload_price.
// @Tags         upload
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UploadCurrencyPriceRequest  true  "Prices and currency"
// @Success      201   {array}   dto.UploadEnvelope  "Data successfully ingested"
// @Failure      400   {array}   dto.ErrorEnvelope   "Bad Request"
// @Failure      422   {array}   dto.UploadEnvelope  "Failed to ingest data"
// @Router       /api/upload_usd_price/ [post]
func (h *Handler) UploadCurrencyPrice(c *gin.Context) {
	var req dto.UploadCurrencyPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err))
		return
	}
	h.ingest(c, req.UploadPriceRequest, req.CurrencyCode)
}

func (h *Handler) ingest(c *gin.Context, req dto.UploadPriceRequest, currencyCode string) {
	from, err := service.ParseDay(req.DateFrom)
	if err != nil {
		_ = c.Error(err)
		return
	}
	to, err := service.ParseDay(req.DateTo)
	if err != nil {
		_ = c.Error(err)
		return
	}

	_, err = h.uploads.Ingest(c.Request.Context(), service.UploadRequest{
		OriginCode:      req.OriginCode,
		DestinationCode: req.DestinationCode,
		DateFrom:        from,
		DateTo:          to,
		Prices:          req.Price,
		CurrencyCode:    currencyCode,
	})

	var ingestErr *service.IngestionError
	switch {
	case errors.As(err, &ingestErr):
		c.JSON(http.StatusUnprocessableEntity, dto.NewUploadResponse(service.MsgIngestFailed))
	case err != nil:
		_ = c.Error(err)
	default:
		c.JSON(http.StatusCreated, dto.NewUploadResponse(service.MsgIngested))
	}
}
