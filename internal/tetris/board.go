package tetris

// BoardWidth and BoardHeight fix the playfield at 10x20 (spec.md §3: a
// variable board size is an explicit non-goal).
const (
	BoardWidth  = 10
	BoardHeight = 20
)

// PenaltyGapColumn is the column left empty in every injected penalty
// row, so a penalty row can never satisfy ClearLines' "every cell
// non-empty" test and self-clear (spec.md §4.2, §9(a)).
const PenaltyGapColumn = 0

// Cell is the tag of a single board square: empty, one of the seven
// tetromino kinds, or the indestructible penalty tag.
type Cell int

const (
	CellEmpty Cell = iota
	CellI
	CellO
	CellT
	CellS
	CellZ
	CellJ
	CellL
	CellPenalty
)

func kindToCell(k Kind) Cell {
	return Cell(k) + 1
}

// Tag returns the wire representation of a cell: "0" for empty, "X" for
// penalty, or the kind's single-character tag otherwise.
func (c Cell) Tag() string {
	switch c {
	case CellEmpty:
		return "0"
	case CellPenalty:
		return "X"
	default:
		return Kind(c - 1).String()
	}
}

// Board is one player's 20x10 playfield. Row 0 is the top. All Board
// operations are pure except where noted, matching spec.md §4.2.
type Board [BoardHeight][BoardWidth]Cell

// NewBoard returns a fresh, empty board. Go zero-values Cell to
// CellEmpty, so no explicit initialization is required.
func NewBoard() Board {
	return Board{}
}

// IsValid reports whether placing p at (x, y) keeps every filled cell
// in-bounds horizontally and vertically below the board, and off of any
// already-occupied cell. Cells above the board (row < 0) are permitted,
// since a spawning piece legitimately starts partly off the top.
func (b *Board) IsValid(p *Piece, x, y int) bool {
	for _, cell := range p.Cells() {
		cx, cy := x+cell[0], y+cell[1]
		if cx < 0 || cx >= BoardWidth || cy >= BoardHeight {
			return false
		}
		if cy < 0 {
			continue
		}
		if b[cy][cx] != CellEmpty {
			return false
		}
	}
	return true
}

// Lock writes p's filled cells into the board at its current position.
// Cells still above the board are ignored.
func (b *Board) Lock(p *Piece) {
	tag := kindToCell(p.Kind)
	for _, cell := range p.Cells() {
		cx, cy := p.X+cell[0], p.Y+cell[1]
		if cy < 0 {
			continue
		}
		if cx >= 0 && cx < BoardWidth && cy < BoardHeight {
			b[cy][cx] = tag
		}
	}
}

// ClearLines removes every row that is entirely non-empty, collapsing
// rows above down and prepending empty rows at the top to keep the
// board at a constant height. It returns the number of rows cleared.
//
// A penalty row can never be "entirely non-empty": AddPenaltyLines
// always leaves PenaltyGapColumn empty, so penalty rows survive every
// call here and can only be removed by being pushed off the top.
func (b *Board) ClearLines() int {
	cleared := 0
	var next Board
	destY := BoardHeight - 1

	for y := BoardHeight - 1; y >= 0; y-- {
		full := true
		for x := 0; x < BoardWidth; x++ {
			if b[y][x] == CellEmpty {
				full = false
				break
			}
		}
		if full {
			cleared++
			continue
		}
		next[destY] = b[y]
		destY--
	}

	*b = next
	return cleared
}

// Spectrum returns, for each column, 20 minus the row index of the
// topmost non-empty cell, or 0 if the column is empty.
func (b *Board) Spectrum() [BoardWidth]int {
	var s [BoardWidth]int
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if b[y][x] != CellEmpty {
				s[x] = BoardHeight - y
				break
			}
		}
	}
	return s
}

// AddPenaltyLines pushes count indestructible rows onto the bottom of
// the board, shifting existing rows up and discarding whatever is
// pushed off the top. Each penalty row has nine CellPenalty cells and
// one empty cell at PenaltyGapColumn.
func (b *Board) AddPenaltyLines(count int) {
	if count <= 0 {
		return
	}
	if count > BoardHeight {
		count = BoardHeight
	}

	for y := 0; y < BoardHeight-count; y++ {
		b[y] = b[y+count]
	}
	for y := BoardHeight - count; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if x == PenaltyGapColumn {
				b[y][x] = CellEmpty
			} else {
				b[y][x] = CellPenalty
			}
		}
	}
}

// Tags renders the board as wire-ready cell tags (spec.md §6: "0" or a
// single-character kind tag).
func (b *Board) Tags() [BoardHeight][BoardWidth]string {
	var out [BoardHeight][BoardWidth]string
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			out[y][x] = b[y][x].Tag()
		}
	}
	return out
}
