package measure

import "image"

// DefaultMarginRatio is the inset, as a fraction of the box width, a hand
// must keep from every edge of the guide box to count as centered.
const DefaultMarginRatio = 0.05

// GuideBox is the square the operator fits their hand into, centered in the frame.
type GuideBox struct {
	Rect   image.Rectangle
	Margin int
}

// NewGuideBox centers a boxWidthPx square in a width x height frame.
// Edges use integer halves so the box lands on whole pixels.
func NewGuideBox(width, height, boxWidthPx int, marginRatio float64) GuideBox {
	half := boxWidthPx / 2
	cx, cy := width/2, height/2
	return GuideBox{
		Rect:   image.Rect(cx-half, cy-half, cx+half, cy+half),
		Margin: int(float64(boxWidthPx) * marginRatio),
	}
}

// Top returns the y coordinate of the top edge.
func (b GuideBox) Top() int { return b.Rect.Min.Y }

// Bottom returns the y coordinate of the bottom edge.
func (b GuideBox) Bottom() int { return b.Rect.Max.Y }

// Contains reports whether every point lies strictly inside the box
// after shrinking it by the margin on all sides. An empty point set is never contained.
func (b GuideBox) Contains(points []image.Point) bool {
	if len(points) == 0 {
		return false
	}
	bounds := BoundingBox(points)
	return bounds.Min.X > b.Rect.Min.X+b.Margin &&
		bounds.Max.X < b.Rect.Max.X-b.Margin &&
		bounds.Min.Y > b.Rect.Min.Y+b.Margin &&
		bounds.Max.Y < b.Rect.Max.Y-b.Margin
}

// BoundingBox returns the smallest rectangle whose corners span all points.
// Max is inclusive: it is the largest coordinate seen, not one past it.
func BoundingBox(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}
