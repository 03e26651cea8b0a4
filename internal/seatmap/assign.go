package seatmap

import (
	"math/rand"
	"strings"
)

// Picker returns a uniformly distributed index in [0, n).
type Picker func(n int) int

// RandomPicker draws from the global math/rand source.
func RandomPicker() Picker { return rand.Intn }

// Assign chooses one seat from available. Seats whose final letter equals
// preference (case-insensitive) are preferred; when none match, or no
// preference is given, the whole pool is used. The choice inside the pool
// is uniform via pick. ok is false when available is empty.
func Assign(available []string, preference string, pick Picker) (seat string, ok bool) {
	if len(available) == 0 {
		return "", false
	}
	pool := available
	if p := strings.ToUpper(strings.TrimSpace(preference)); p != "" {
		matched := make([]string, 0, len(available))
		for _, s := range available {
			if strings.HasSuffix(s, p) {
				matched = append(matched, s)
			}
		}
		if len(matched) > 0 {
			pool = matched
		}
	}
	if pick == nil {
		pick = RandomPicker()
	}
	return pool[pick(len(pool))], true
}
