package sqlstore

import (
	"math"

	sq "github.com/Masterminds/squirrel"
)

// Paginate applies an offset and limit to q. A zero limit means no limit;
// sqlite only accepts OFFSET after a LIMIT, so one is always written when
// an offset is given.
func Paginate(q sq.SelectBuilder, offset, limit int) sq.SelectBuilder {
	switch {
	case limit > 0:
		q = q.Limit(uint64(limit))
	case offset > 0:
		q = q.Limit(math.MaxInt64)
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}
