package shuffle

import (
	"fmt"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
)

// Label returns the positional label for index i: A..Z, then AA, AB, ...
func Label(i int) string {
	if i < 0 {
		return ""
	}
	var b []byte
	for i >= 0 {
		b = append([]byte{byte('A' + i%26)}, b...)
		i = i/26 - 1
	}
	return string(b)
}

// LabelIndex is the inverse of Label.
func LabelIndex(label string) (int, bool) {
	if label == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c < 'A' || c > 'Z' {
			return 0, false
		}
		n = n*26 + int(c-'A'+1)
	}
	return n - 1, true
}

// CheckBijection verifies that labels maps the first n canonical labels onto the first
// n display labels with none missing or repeated.
func CheckBijection(labels models.LabelMap, n int) error {
	if len(labels) != n {
		return fmt.Errorf("%w: label map has %d entries, question has %d options", ErrConfigMismatch, len(labels), n)
	}

	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		from := Label(i)
		to, ok := labels[from]
		if !ok {
			return fmt.Errorf("%w: canonical label %s not mapped", ErrConfigMismatch, from)
		}
		j, ok := LabelIndex(to)
		if !ok || j >= n {
			return fmt.Errorf("%w: display label %q out of range", ErrConfigMismatch, to)
		}
		if seen[j] {
			return fmt.Errorf("%w: display label %s used twice", ErrConfigMismatch, to)
		}
		seen[j] = true
	}
	return nil
}
