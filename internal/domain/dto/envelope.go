package dto

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/guttosm/freightrates/internal/domain/models"
)

const dayLayout = "2006-01-02"

// RatesEnvelope is the success body of the rates endpoints. Responses are
// always a single-element JSON array: [{"status":"success","data":[...]}].
type RatesEnvelope struct {
	Status string      `json:"status" example:"success"`
	Data   []DailyRate `json:"data"`
}

// DailyRate is one row of a rates response.
type DailyRate struct {
	Day          string       `json:"day" example:"2016-01-01"`
	AveragePrice AveragePrice `json:"average_price" swaggertype:"primitive,integer" example:"1112"`
}

// UploadEnvelope is the body of the upload endpoints, on success and on
// ingestion failure alike (status is true in both, matching the public contract).
type UploadEnvelope struct {
	Status bool          `json:"status" example:"true"`
	Data   UploadMessage `json:"data"`
}

// UploadMessage carries the human readable upload outcome.
type UploadMessage struct {
	Message string `json:"message" example:"Data successfully ingested"`
}

// ErrorEnvelope is the uniform error body.
type ErrorEnvelope struct {
	Status string    `json:"status" example:"error"`
	Data   ErrorData `json:"data"`
}

// ErrorData describes the HTTP status and the list of errors.
type ErrorData struct {
	HTTPCode string        `json:"http_code" example:"400 BAD REQUEST"`
	Errors   []ErrorDetail `json:"errors"`
}

// ErrorDetail is a single coded error.
type ErrorDetail struct {
	ErrorCode    int    `json:"error_code" example:"2000"`
	ErrorMessage string `json:"error_message" example:"date_from must be less than or equal to date_to"`
}

// NewRatesResponse builds the rates body from aggregated days.
func NewRatesResponse(days []models.DailyAverage) []RatesEnvelope {
	rows := make([]DailyRate, 0, len(days))
	for _, d := range days {
		price := AveragePrice{Value: d.Average}
		if !d.Confident {
			price = NullPrice()
		}
		rows = append(rows, DailyRate{Day: d.Day.Format(dayLayout), AveragePrice: price})
	}
	return []RatesEnvelope{{Status: "success", Data: rows}}
}

// NewUploadResponse builds the upload body.
func NewUploadResponse(message string) []UploadEnvelope {
	return []UploadEnvelope{{Status: true, Data: UploadMessage{Message: message}}}
}

// NewErrorResponse builds the error body for an HTTP status and error code.
func NewErrorResponse(status, code int, message string) []ErrorEnvelope {
	return []ErrorEnvelope{{
		Status: "error",
		Data: ErrorData{
			HTTPCode: HTTPCode(status),
			Errors:   []ErrorDetail{{ErrorCode: code, ErrorMessage: message}},
		},
	}}
}

// HTTPCode renders a status as "400 BAD REQUEST".
func HTTPCode(status int) string {
	return fmt.Sprintf("%d %s", status, strings.ToUpper(http.StatusText(status)))
}
