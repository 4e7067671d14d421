package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (Date) ImplementsGraphQLType(name string) bool {
	return name == "Date"
}

func (d *Date) UnmarshalGraphQL(input interface{}) error {
	s, ok := input.(string)
	if !ok {
		return fmt.Errorf("wrong type for Date: %T", input)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

// Decimal is a money amount serialized as a string with two decimals.
type Decimal struct {
	decimal.Decimal
}

func (Decimal) ImplementsGraphQLType(name string) bool {
	return name == "Decimal"
}

func (d *Decimal) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case string:
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid decimal %q", v)
		}
		d.Decimal = dec
	case int32:
		d.Decimal = decimal.NewFromInt32(v)
	case float64:
		d.Decimal = decimal.NewFromFloat(v)
	default:
		return fmt.Errorf("wrong type for Decimal: %T", input)
	}
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.StringFixed(2))
}

func decimalPtr(d decimal.NullDecimal) *Decimal {
	if !d.Valid {
		return nil
	}
	return &Decimal{Decimal: d.Decimal}
}
