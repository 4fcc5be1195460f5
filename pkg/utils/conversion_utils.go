package utils

import "strconv"

// StrToInt64 converts a string to an int64.
// Returns 0 and an error if the conversion fails.
func StrToInt64(s string) (int64, error) {
	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}

// StrToInt converts a string to an int, typically used for table numbers.
func StrToInt(s string) (int, error) {
	return strconv.Atoi(s)
}
