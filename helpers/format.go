package helpers

import "fmt"

// FormatOdds renders a 1-in-N odds value as display text, with comma
// thousand separators so jackpot-scale odds stay readable
// (e.g. "1 in 302,575,350").
func FormatOdds(n int) string {
	if n < 0 {
		n = 0
	}

	str := fmt.Sprintf("%d", n)
	length := len(str)

	if length <= 3 {
		return fmt.Sprintf("1 in %s", str)
	}

	var result string
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}

	return fmt.Sprintf("1 in %s", result)
}
