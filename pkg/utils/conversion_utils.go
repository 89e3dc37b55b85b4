package utils

import (
	"strconv"
	"strings"
)

// Int64ToStr converts an int64 to its string representation.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// StrToInt converts a trimmed string to an int.
func StrToInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
