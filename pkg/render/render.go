// Package render draws detection overlays on frames for the debug
// video output. Box color encodes the distance category so a recorded
// walk can be audited visually.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/guidewalk/go-guidewalk/pkg/proximity"
	"github.com/guidewalk/go-guidewalk/pkg/threat"
)

var (
	colorImmediate = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	colorNear      = color.RGBA{R: 240, G: 170, B: 20, A: 255}
	colorFar       = color.RGBA{R: 60, G: 200, B: 80, A: 255}
	colorEdge      = color.RGBA{R: 80, G: 140, B: 255, A: 255}
	colorLabelText = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func categoryColor(cat proximity.Category) color.RGBA {
	switch cat {
	case proximity.Immediate:
		return colorImmediate
	case proximity.Near:
		return colorNear
	default:
		return colorFar
	}
}

// Assessments draws one labeled box per assessment. The selected
// assessment, if any, gets a thicker border.
func Assessments(img *gocv.Mat, assessments []threat.Assessment, selected *threat.Assessment) {
	type label struct {
		rect image.Rectangle
		pos  image.Point
		clr  color.RGBA
		text string
	}
	labels := make([]label, 0, len(assessments))

	for i := range assessments {
		a := &assessments[i]
		clr := categoryColor(a.Estimate.Category)
		thickness := 2
		if selected != nil && a.Detection.Box == selected.Detection.Box && a.Detection.Class == selected.Detection.Class {
			thickness = 4
		}
		gocv.Rectangle(img, a.Detection.Box, clr, thickness)

		text := fmt.Sprintf("%s %.2f s%d", a.Detection.Class, a.Detection.Confidence, a.Score)
		size := gocv.GetTextSize(text, gocv.FontHersheySimplex, 0.5, 1)
		top := a.Detection.Box.Min.Y
		labels = append(labels, label{
			rect: image.Rect(a.Detection.Box.Min.X, top-size.Y-8, a.Detection.Box.Min.X+size.X+8, top),
			pos:  image.Pt(a.Detection.Box.Min.X+4, top-4),
			clr:  clr,
			text: text,
		})
	}

	// Labels go on last so contour lines never cover them.
	for _, l := range labels {
		gocv.Rectangle(img, l.rect, l.clr, -1)
		gocv.PutText(img, l.text, l.pos, gocv.FontHersheySimplex, 0.5, colorLabelText, 1)
	}
}

// SurfaceBounds draws the detected walkable-surface boundaries as
// vertical lines.
func SurfaceBounds(img *gocv.Mat, leftX, rightX int, hasLeft, hasRight bool) {
	h := img.Rows()
	if hasLeft {
		gocv.Line(img, image.Pt(leftX, 0), image.Pt(leftX, h), colorEdge, 2)
	}
	if hasRight {
		gocv.Line(img, image.Pt(rightX, 0), image.Pt(rightX, h), colorEdge, 2)
	}
}

// Status writes a one-line heads-up summary in the top-left corner.
func Status(img *gocv.Mat, text string) {
	gocv.PutText(img, text, image.Pt(10, 24), gocv.FontHersheySimplex, 0.6, colorLabelText, 2)
}
