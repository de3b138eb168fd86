package catalog

import (
	"net/http"
	"strconv"

	"github.com/carcatalog/catalog/kit/platform/errors"
)

// MaxPageSize is the largest limit a list request may ask for.
const MaxPageSize = 1000

var (
	ErrOffsetNegative = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "offset cannot be negative",
	}
	ErrLimitNegative = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "limit cannot be negative",
	}
	ErrLimitTooLarge = errors.Invalidf("limit cannot exceed %d", MaxPageSize)
)

// Page is the window of a list request. A zero Limit returns every row.
type Page struct {
	Offset int
	Limit  int
}

// OK validates the page bounds.
func (p Page) OK() error {
	if p.Offset < 0 {
		return ErrOffsetNegative
	}
	if p.Limit < 0 {
		return ErrLimitNegative
	}
	if p.Limit > MaxPageSize {
		return ErrLimitTooLarge
	}
	return nil
}

// DecodePage reads the offset and limit query parameters of r.
func DecodePage(r *http.Request) (Page, error) {
	var p Page
	qp := r.URL.Query()

	if offset := qp.Get("offset"); offset != "" {
		o, err := strconv.Atoi(offset)
		if err != nil {
			return p, errors.Invalidf("offset %q is not a number", offset)
		}
		p.Offset = o
	}

	if limit := qp.Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil {
			return p, errors.Invalidf("limit %q is not a number", limit)
		}
		p.Limit = l
	}

	return p, p.OK()
}
