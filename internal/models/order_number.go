package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	OrderNumberPrefix = "ORD-"
	FirstOrderNumber  = 1001
)

// NextOrderNumber derives the number following last, the order number of the
// most recently created order. An empty last starts the sequence.
//
// The result is advisory: two concurrent creations can derive the same value
// and only the unique index on orders.order_number decides which one wins.
func NextOrderNumber(last string) (string, error) {
	if last == "" {
		return FormatOrderNumber(FirstOrderNumber), nil
	}

	n, err := ParseOrderNumber(last)
	if err != nil {
		return "", err
	}
	return FormatOrderNumber(n + 1), nil
}

// FormatOrderNumber renders n as ORD- followed by at least six digits.
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("%s%06d", OrderNumberPrefix, n)
}

// ParseOrderNumber returns the numeric suffix of an order number.
func ParseOrderNumber(s string) (int64, error) {
	_, suffix, ok := strings.Cut(s, "-")
	if !ok || suffix == "" {
		return 0, fmt.Errorf("malformed order number %q", s)
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("malformed order number %q", s)
	}
	return n, nil
}
