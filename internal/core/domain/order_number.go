package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatOrderNumber renders the counter shown to customers, e.g. "B-0042".
// Numbers only need to be unique within one cafe.
func FormatOrderNumber(initial string, n int64) string {
	return fmt.Sprintf("%s-%04d", initial, n)
}

// OrderNumberSeq extracts the counter from a formatted order number.
// The prefix is ignored so a renamed cafe keeps counting upward.
func OrderNumberSeq(number string) (int64, bool) {
	i := strings.LastIndexByte(number, '-')
	if i < 0 || i == len(number)-1 {
		return 0, false
	}
	n, err := strconv.ParseInt(number[i+1:], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
