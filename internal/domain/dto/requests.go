package dto

// UploadPriceRequest is the body of POST /api/upload_price/.
//
// Price holds one value per calendar day from DateFrom to DateTo inclusive.
type UploadPriceRequest struct {
	DateFrom        string  `json:"date_from" binding:"required,isodate" example:"2016-01-01"`
	DateTo          string  `json:"date_to" binding:"required,isodate" example:"2016-01-02"`
	OriginCode      string  `json:"origin_code" binding:"required,max=200" example:"CNGGZ"`
	DestinationCode string  `json:"destination_code" binding:"required,max=200" example:"EETLL"`
	Price           []int64 `json:"price" binding:"required,dive,min=0,max=2147483647" example:"217,315"`
}

// UploadCurrencyPriceRequest is the body of POST /api/upload_usd_price/.
// Prices are expressed in CurrencyCode and converted before they are stored.
type UploadCurrencyPriceRequest struct {
	UploadPriceRequest
	CurrencyCode string `json:"currency_code" binding:"required,currency_code" example:"INR"`
}
