package utils

// NewNullString returns a pointer to s, or nil when s is empty. Optional
// text columns such as customer_name store NULL rather than an empty string.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
