package handlers

import (
	"errors"
	"strconv"
)

// parseLimitParam bounds the recent-orders window: def when absent,
// capped at max.
func parseLimitParam(limitStr string, def, max int64) (int64, error) {
	if limitStr == "" {
		return def, nil
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 1 {
		return 0, errors.New("invalid limit")
	}
	if limit > max {
		return max, nil
	}
	return limit, nil
}
