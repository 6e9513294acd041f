package charmatrix

// Braille represents an 8 dot braille pattern in x,y coordinates space. Eg:
//   +----------+
//   |(0,0)(1,0)|
//   |(0,1)(1,1)|
//   |(0,2)(1,2)|
//   |(0,3)(1,3)|
//   +----------+
type Braille [2][4]int

// Rune maps each point in braille to a dot identifier and
// calculates the corresponding unicode symbol.
//   +------+
//   |(1)(4)|
//   |(2)(5)|
//   |(3)(6)|
//   |(7)(8)|
//   +------+
// See https://en.wikipedia.org/wiki/Braille_Patterns#Identifying.2C_naming_and_ordering)
func (b Braille) Rune() rune {
	lowEndian := [8]int{b[0][0], b[0][1], b[0][2], b[1][0], b[1][1], b[1][2], b[0][3], b[1][3]}
	var v int
	for i, x := range lowEndian {
		v += int(x) << uint(i)
	}
	return rune(v) + '\u2800'
}

func (b Braille) String() string {
	return string(b.Rune())
}

// Dots fill bottom-up so each step of the ramp adds one dot of ink.
var brailleFillOrder = [8][2]int{
	{0, 3}, {1, 3}, {0, 2}, {1, 2}, {0, 1}, {1, 1}, {0, 0}, {1, 0},
}

// brailleGlyphs returns the nine patterns from empty to full.
func brailleGlyphs() string {
	var b Braille
	glyphs := []rune{b.Rune()}
	for _, pt := range brailleFillOrder {
		b[pt[0]][pt[1]] = 1
		glyphs = append(glyphs, b.Rune())
	}
	return string(glyphs)
}
