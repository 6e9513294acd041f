package charmatrix

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	esc       = '\x1b'
	sgrReset  = "\x1b[0m"
	sgrFgTrue = "\x1b[38;2;%d;%d;%dm"
)

// ANSILine renders cells as terminal text, one 24-bit foreground escape per
// cell, and resets attributes at the end of the line.
func ANSILine(cells []Cell) string {
	var sb strings.Builder
	sb.Grow(len(cells) * 20)
	for _, c := range cells {
		fmt.Fprintf(&sb, sgrFgTrue, c.Color.R, c.Color.G, c.Color.B)
		sb.WriteRune(c.Glyph)
	}
	sb.WriteString(sgrReset)
	return sb.String()
}

// ParseANSILine turns a line of SGR colored text back into cells. Each glyph
// takes the last 24-bit foreground color set before it; glyphs before any
// color, or after a reset, get the zero color. SGR attributes other than
// 38;2 and 0 are ignored.
func ParseANSILine(line string) ([]Cell, error) {
	var (
		cells []Cell
		cur   RGB
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != esc {
			cells = append(cells, Cell{Glyph: r, Color: cur})
			continue
		}
		if i+1 >= len(runes) || runes[i+1] != '[' {
			return nil, fmt.Errorf("%w: bare escape at column %d", ErrDecoding, i)
		}
		end := i + 2
		for end < len(runes) && runes[end] != 'm' {
			if !strings.ContainsRune("0123456789;", runes[end]) {
				return nil, fmt.Errorf("%w: unsupported escape at column %d", ErrDecoding, i)
			}
			end++
		}
		if end >= len(runes) {
			return nil, fmt.Errorf("%w: unterminated escape at column %d", ErrDecoding, i)
		}
		next, err := applySGR(string(runes[i+2:end]), cur)
		if err != nil {
			return nil, fmt.Errorf("%w: column %d: %v", ErrDecoding, i, err)
		}
		cur = next
		i = end
	}
	return cells, nil
}

func applySGR(params string, cur RGB) (RGB, error) {
	if params == "" {
		return RGB{}, nil
	}
	fields := strings.Split(params, ";")
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "", "0", "39":
			cur = RGB{}
		case "38":
			if i+4 >= len(fields) {
				return cur, fmt.Errorf("truncated color %q", params)
			}
			if fields[i+1] != "2" {
				return cur, fmt.Errorf("unsupported color mode %q", params)
			}
			var rgb [3]uint8
			for k := 0; k < 3; k++ {
				v, err := strconv.ParseUint(fields[i+2+k], 10, 8)
				if err != nil {
					return cur, fmt.Errorf("bad color component %q", fields[i+2+k])
				}
				rgb[k] = uint8(v)
			}
			cur = RGB{rgb[0], rgb[1], rgb[2]}
			i += 4
		}
	}
	return cur, nil
}
