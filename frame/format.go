// SPDX-License-Identifier: MIT

package frame

import (
	"math"
	"strconv"
)

// formatFloat renders v with the shortest round-tripping representation;
// NaN becomes the empty string so missing values stay blank in text exports.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
