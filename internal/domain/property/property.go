package property

import (
	"errors"
	"strings"
)

var ErrPropertyRequired = errors.New("property: id required")

// ID identifies a rental property. Bookings, expenses and price
// configurations are all scoped by it.
type ID string

func (id ID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return ErrPropertyRequired
	}
	return nil
}
