// Package rotate maps page coordinates between the unrotated frame a
// score page is stored in and the frame the viewer shows after a number
// of clockwise quarter turns. All transforms are pure and dimension
// aware, so they work the same on page units and on normalized [0,1]
// coordinates.
package rotate

// Point is a position on a page, in whatever units the caller uses.
type Point struct {
	X float64
	Y float64
}

// Normalize reduces a turn count to the canonical 0..3 range. Negative
// counts (counter-clockwise turns) wrap around.
func Normalize(turns int) int {
	return ((turns % 4) + 4) % 4
}

// Compose returns the single turn count equivalent to rotating by first
// and then by second.
func Compose(first, second int) int {
	return Normalize(first + second)
}

// Apply maps p from the unrotated page frame into the frame rotated
// clockwise by turns quarter turns. width and height are the unrotated
// page dimensions, in the same units as p.
func Apply(p Point, width, height float64, turns int) Point {
	switch Normalize(turns) {
	case 1:
		return Point{X: height - p.Y, Y: p.X}
	case 2:
		return Point{X: width - p.X, Y: height - p.Y}
	case 3:
		return Point{X: p.Y, Y: width - p.X}
	default:
		return p
	}
}

// Dims returns the page dimensions as seen after turns clockwise
// quarter turns. Odd counts swap width and height.
func Dims(width, height float64, turns int) (float64, float64) {
	if Normalize(turns)%2 == 1 {
		return height, width
	}
	return width, height
}

// Invert maps p from the rotated frame back into the unrotated page
// frame. width and height are the unrotated page dimensions, the same
// values that were passed to Apply.
func Invert(p Point, width, height float64, turns int) Point {
	rw, rh := Dims(width, height, turns)
	return Apply(p, rw, rh, Normalize(-turns))
}
