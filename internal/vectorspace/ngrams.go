package vectorspace

import "strings"

// charNGrams emits boundary-padded character n-grams of lengths
// [minN, maxN] for every whitespace-separated word. Words shorter than
// n (after padding) contribute their whole padded form once.
func charNGrams(text string, minN, maxN int) []string {
	var grams []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		padded := []rune(" " + word + " ")
		length := len(padded)
		for n := minN; n <= maxN; n++ {
			if n >= length {
				grams = append(grams, string(padded))
				break
			}
			for offset := 0; offset+n <= length; offset++ {
				grams = append(grams, string(padded[offset:offset+n]))
			}
		}
	}
	return grams
}
