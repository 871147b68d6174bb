package rectify

import (
	"math"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// pivotEpsilon is the smallest pivot accepted while solving for the
// transform; smaller pivots mean the corner sets are degenerate.
const pivotEpsilon = 1e-12

// homography is a 3x3 projective matrix in row-major order with h[8] = 1.
type homography [9]float64

// solveHomography returns the transform that maps from[i] onto to[i].
//
// The eight unknowns are found with Gauss-Jordan elimination and partial
// pivoting on the standard two-rows-per-correspondence system. Reports
// false when the system is singular.
func solveHomography(from, to [4]geometry.Point) (homography, bool) {
	var m [8][9]float64
	for i := 0; i < 4; i++ {
		X, Y := from[i].X, from[i].Y
		x, y := to[i].X, to[i].Y
		m[2*i] = [9]float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x, x}
		m[2*i+1] = [9]float64{0, 0, 0, X, Y, 1, -X * y, -Y * y, y}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < pivotEpsilon {
			return homography{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		div := m[col][col]
		for c := col; c < 9; c++ {
			m[col][c] /= div
		}
		for r := 0; r < 8; r++ {
			if r == col || m[r][col] == 0 {
				continue
			}
			factor := m[r][col]
			for c := col; c < 9; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	var h homography
	for i := 0; i < 8; i++ {
		h[i] = m[i][8]
	}
	h[8] = 1
	return h, true
}

// apply maps (x, y) through h. Reports false for points on the line at
// infinity.
func (h homography) apply(x, y float64) (float64, float64, bool) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		return 0, 0, false
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w, true
}
