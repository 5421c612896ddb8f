package util

// FalseIfNil safely dereferences a bool pointer, defaulting to false.
func FalseIfNil(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
