package scan

import "github.com/ironsheep/docscan-mcp/internal/geometry"

// recencyWeights are applied newest first. Entries older than the table
// each weigh 1.
var recencyWeights = [...]float64{20, 18, 16, 14, 12, 10, 8, 6, 4, 2, 1}

// weightedAverage returns the recency weighted mean of history, which is
// ordered oldest to newest. An empty history averages to the empty quad.
func weightedAverage(history []geometry.Quad) geometry.Quad {
	var sum geometry.Quad
	var total float64
	for age := 0; age < len(history); age++ {
		w := 1.0
		if age < len(recencyWeights) {
			w = recencyWeights[age]
		}
		sum = sum.Add(history[len(history)-1-age].Scale(w))
		total += w
	}
	if total == 0 {
		return geometry.Quad{}
	}
	return sum.Divide(total)
}
