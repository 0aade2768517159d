package service

import (
	"sort"
	"time"

	"github.com/guttosm/freightrates/internal/domain/models"
)

// MinConfidentObservations is the smallest per-day sample that still yields
// a published average when low-confidence suppression is on.
const MinConfidentObservations = 3

// AggregateDaily averages observations per calendar day, ascending by day.
// Averages are integer means truncated toward zero. With suppressLowConfidence
// set, days backed by fewer than MinConfidentObservations rows are marked not
// confident. The result never depends on input order.
func AggregateDaily(observations []models.PriceObservation, suppressLowConfidence bool) []models.DailyAverage {
	type bucket struct {
		sum   int64
		count int
	}

	buckets := make(map[time.Time]*bucket)
	for _, o := range observations {
		day := truncateDay(o.Day)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.sum += o.Price
		b.count++
	}

	out := make([]models.DailyAverage, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, models.DailyAverage{
			Day:       day,
			Average:   b.sum / int64(b.count),
			Count:     b.count,
			Confident: !suppressLowConfidence || b.count >= MinConfidentObservations,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}
