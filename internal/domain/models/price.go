package models

import "time"

// PriceObservation is one quoted price for a route on a calendar day.
//
// Price is stored in reference-currency units and is never negative.
// Day carries no time component (midnight UTC).
type PriceObservation struct {
	OriginCode      string
	DestinationCode string
	Day             time.Time
	Price           int64
}

// DailyAverage is the aggregated price for one day of a route query.
//
// Confident is false when the day was suppressed for having too few
// observations; Average is meaningless in that case.
type DailyAverage struct {
	Day       time.Time
	Average   int64
	Count     int
	Confident bool
}
