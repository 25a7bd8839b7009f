package rulex

// Byte classification helpers for matcher authors.

func IsSpace(c byte) bool {
	switch c {
	case ' ', '\n', '\t', '\b', '\r', '\v':
		return true
	}
	return false
}

func IsAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_'
}

func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func IsAlnum(c byte) bool {
	return IsAlpha(c) || IsDigit(c)
}
