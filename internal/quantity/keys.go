package quantity

import "strings"

// Prohibited lists characters a number field would otherwise let through.
const Prohibited = "eE+-.,"

// AcceptKey reports whether a keystroke may be applied to the field text.
// Prohibited symbols are dropped, and so is a zero typed into an empty field.
func AcceptKey(current string, key rune) bool {
	if strings.ContainsRune(Prohibited, key) {
		return false
	}
	if key == '0' && current == "" {
		return false
	}
	return true
}
