package pdf

import (
	"fmt"
	"strings"
)

// PathOp tags one segment of a Path (spec §4.8 path construction: m l c v y h).
type PathOp int

const (
	PathMoveTo PathOp = iota
	PathLineTo
	PathCurveTo // cubic Bezier: X1,Y1 X2,Y2 then X,Y
	PathClose
)

// PathSegment is one command of a Path, already in device space (the
// interpreter applies the CTM as each construction operator runs, the same
// immediate-transform approach the teacher's GraphicsState.Transform used
// for text positions).
type PathSegment struct {
	Op             PathOp
	X, Y           float64
	X1, Y1, X2, Y2 float64
}

// Path is an accumulated sequence of subpaths (spec §4.8's "current Path
// builder": open builder, finished path, or empty).
type Path struct {
	Segments []PathSegment
	startX, startY float64
	curX, curY     float64
}

func (p *Path) MoveTo(x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathMoveTo, X: x, Y: y})
	p.startX, p.startY = x, y
	p.curX, p.curY = x, y
}

func (p *Path) LineTo(x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathLineTo, X: x, Y: y})
	p.curX, p.curY = x, y
}

func (p *Path) CurveTo(x1, y1, x2, y2, x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathCurveTo, X: x, Y: y, X1: x1, Y1: y1, X2: x2, Y2: y2})
	p.curX, p.curY = x, y
}

// CurveToV substitutes the current point for the first control point ("v").
func (p *Path) CurveToV(x2, y2, x, y float64) {
	p.CurveTo(p.curX, p.curY, x2, y2, x, y)
}

// CurveToY substitutes the end point for the second control point ("y").
func (p *Path) CurveToY(x1, y1, x, y float64) {
	p.CurveTo(x1, y1, x, y, x, y)
}

func (p *Path) Close() {
	p.Segments = append(p.Segments, PathSegment{Op: PathClose, X: p.startX, Y: p.startY})
	p.curX, p.curY = p.startX, p.startY
}

func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

func (p *Path) Empty() bool { return len(p.Segments) == 0 }

func (p *Path) CurrentPoint() (float64, float64) { return p.curX, p.curY }

// Key serializes the path deterministically, the cache key the interpreter's
// bounded mask cache (spec §3, §4.8, §9) uses to recognize a repeated
// clip-path accumulation.
func (p *Path) Key() string {
	var sb strings.Builder
	for _, s := range p.Segments {
		fmt.Fprintf(&sb, "%d:%.3f,%.3f,%.3f,%.3f,%.3f,%.3f;", s.Op, s.X, s.Y, s.X1, s.Y1, s.X2, s.Y2)
	}
	return sb.String()
}

// Bounds returns the path's axis-aligned bounding box in device space.
func (p *Path) Bounds() Rectangle {
	if len(p.Segments) == 0 {
		return Rectangle{}
	}
	r := Rectangle{LLX: p.Segments[0].X, LLY: p.Segments[0].Y, URX: p.Segments[0].X, URY: p.Segments[0].Y}
	grow := func(x, y float64) {
		if x < r.LLX {
			r.LLX = x
		}
		if x > r.URX {
			r.URX = x
		}
		if y < r.LLY {
			r.LLY = y
		}
		if y > r.URY {
			r.URY = y
		}
	}
	for _, s := range p.Segments {
		grow(s.X, s.Y)
		if s.Op == PathCurveTo {
			grow(s.X1, s.Y1)
			grow(s.X2, s.Y2)
		}
	}
	return r
}
