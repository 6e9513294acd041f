package charmatrix

import (
	"image/draw"
	"sort"
	"strings"
)

const (
	DefaultFontSize   = 14.0
	DefaultLineHeight = 1.2 // multiple of the font size
	DefaultMargin     = 10  // left margin in pixels
)

// PainterOptions control glyph placement on the canvas.
type PainterOptions struct {
	FontSize   float64
	LineHeight float64 // multiple of FontSize
	Margin     int
	Foreground RGB // glyph color of monochrome frames
}

// Painter draws character grids onto pixel canvases.
type Painter struct {
	font Font
	opts PainterOptions
}

func NewPainter(f Font, opts PainterOptions) *Painter {
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = DefaultLineHeight
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	return &Painter{font: f, opts: opts}
}

// LinePixels is the vertical distance between rows.
func (p *Painter) LinePixels() int {
	lh := int(p.opts.FontSize * p.opts.LineHeight)
	if lh < 1 {
		lh = 1
	}
	return lh
}

// CanvasSize is the natural canvas for a grid of cols x rows.
func (p *Painter) CanvasSize(cols, rows int) (int, int) {
	adv := p.font.Advance(p.opts.FontSize)
	w := int(float64(cols)*adv+0.999) + 2*p.opts.Margin
	return w, rows * p.LinePixels()
}

// Check verifies that the font can draw every glyph used by frames.
func (p *Painter) Check(frames []*Frame) error {
	seen := make(map[rune]bool)
	var missing []rune
	for _, f := range frames {
		for _, row := range f.Rows {
			for _, c := range row {
				if seen[c.Glyph] {
					continue
				}
				seen[c.Glyph] = true
				if !p.font.Supports(c.Glyph) {
					missing = append(missing, c.Glyph)
				}
			}
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return &UnsupportedCharsError{Chars: missing}
	}
	return nil
}

// Paint draws frame onto canvas. Rows that would not fit below the canvas are
// skipped. Colored rows are split into runs of one color, each painted as a
// full width string with the other positions blanked so columns stay aligned.
func (p *Painter) Paint(canvas draw.Image, frame *Frame) {
	lh := p.LinePixels()
	bounds := canvas.Bounds()
	for i, row := range frame.Rows {
		y := bounds.Min.Y + i*lh
		if y+lh > bounds.Max.Y {
			break
		}
		x := bounds.Min.X + p.opts.Margin
		if !frame.Colored {
			p.font.Paint(canvas, rowText(row), x, y, p.opts.FontSize, p.opts.Foreground)
			continue
		}
		for _, run := range colorRuns(row) {
			p.font.Paint(canvas, run.text, x, y, p.opts.FontSize, run.color)
		}
	}
}

func rowText(row []Cell) string {
	var sb strings.Builder
	for _, c := range row {
		sb.WriteRune(c.Glyph)
	}
	return sb.String()
}

type colorRun struct {
	color RGB
	text  string
}

// colorRuns splits row into maximal runs of equal color. Blank runs are
// dropped since they paint nothing.
func colorRuns(row []Cell) []colorRun {
	var runs []colorRun
	for start := 0; start < len(row); {
		end := start + 1
		for end < len(row) && row[end].Color == row[start].Color {
			end++
		}
		blank := true
		var sb strings.Builder
		for i, c := range row {
			if i >= start && i < end {
				sb.WriteRune(c.Glyph)
				if c.Glyph != ' ' {
					blank = false
				}
			} else {
				sb.WriteByte(' ')
			}
		}
		if !blank {
			runs = append(runs, colorRun{color: row[start].Color, text: strings.TrimRight(sb.String(), " ")})
		}
		start = end
	}
	return runs
}
