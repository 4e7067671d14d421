package pricing

import (
	"sort"
	"time"

	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/shopspring/decimal"
)

// SortPrices orders prices by ValidUntil with open-ended prices last.
func SortPrices(prices []models.Price) {
	sort.SliceStable(prices, func(i, j int) bool {
		a, b := prices[i].ValidUntil, prices[j].ValidUntil
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
}

// SelectPrice returns the first price, in ValidUntil order, whose validity
// window contains today. Nil when no price is valid.
func SelectPrice(prices []models.Price, today time.Time) *models.Price {
	sorted := make([]models.Price, len(prices))
	copy(sorted, prices)
	SortPrices(sorted)

	for i := range sorted {
		if DOBInRange(today, sorted[i].ValidFrom, sorted[i].ValidUntil) {
			return &sorted[i]
		}
	}
	return nil
}

// DaysAttended counts the event days from arrival to departure, both inclusive.
// A missing arrival starts at the first day, a missing departure ends at the last.
func DaysAttended(days []models.Day, arrival, departure *models.Day) int {
	if len(days) == 0 {
		return 0
	}
	first, last := days[0].Order, days[0].Order
	for _, d := range days {
		if d.Order < first {
			first = d.Order
		}
		if d.Order > last {
			last = d.Order
		}
	}
	if arrival != nil {
		first = arrival.Order
	}
	if departure != nil {
		last = departure.Order
	}

	n := 0
	for _, d := range days {
		if d.Order >= first && d.Order <= last {
			n++
		}
	}
	return n
}

// Amount prefers the flat price; the per-day price is multiplied by days.
func Amount(price *models.Price, days int) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}
	if price.Total.Valid {
		return price.Total.Decimal
	}
	if price.PriceDay.Valid {
		return price.PriceDay.Decimal.Mul(decimal.NewFromInt(int64(days)))
	}
	return decimal.Zero
}

// BookingAmount computes what the participant owes for the booking. The
// event must have its Days loaded and rate its Prices; a booking without a
// rate costs nothing.
func BookingAmount(event models.Event, rate *models.Rate, booking models.Booking, today time.Time) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	price := SelectPrice(rate.Prices, today)
	if price == nil {
		return decimal.Zero
	}
	return Amount(price, DaysAttended(event.Days, dayByID(event.Days, booking.ArrivalID), dayByID(event.Days, booking.DepartureID)))
}

func dayByID(days []models.Day, id *uint) *models.Day {
	if id == nil {
		return nil
	}
	for i := range days {
		if days[i].ID == *id {
			return &days[i]
		}
	}
	return nil
}
