// Package tetris implements the authoritative game core: pieces, boards,
// the shared piece stream, per-room state machines and the room registry.
// Nothing in this package depends on transport or storage.
package tetris

// Kind identifies one of the seven tetromino shapes. The penalty tag is
// not a Kind; it exists only as the board cell CellPenalty.
type Kind int

const (
	KindI Kind = iota
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
)

// AllKinds lists the seven tetromino kinds in a fixed order, used by the
// PieceBag to build one bag permutation at a time.
var AllKinds = [7]Kind{KindI, KindO, KindT, KindS, KindZ, KindJ, KindL}

// String returns the single-character wire tag for a kind ("I", "O", ...).
func (k Kind) String() string {
	switch k {
	case KindI:
		return "I"
	case KindO:
		return "O"
	case KindT:
		return "T"
	case KindS:
		return "S"
	case KindZ:
		return "Z"
	case KindJ:
		return "J"
	case KindL:
		return "L"
	default:
		return "?"
	}
}

// spawnShapes holds the fixed spawn orientation for each kind, rows
// listed top-down. I is a 4x4 grid, O a 2x2, the rest 3x3 — matching the
// layout in spec.md §4.1.
var spawnShapes = map[Kind][][]int{
	KindI: {
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	},
	KindO: {
		{1, 1},
		{1, 1},
	},
	KindT: {
		{0, 1, 0},
		{1, 1, 1},
		{0, 0, 0},
	},
	KindS: {
		{0, 1, 1},
		{1, 1, 0},
		{0, 0, 0},
	},
	KindZ: {
		{1, 1, 0},
		{0, 1, 1},
		{0, 0, 0},
	},
	KindJ: {
		{1, 0, 0},
		{1, 1, 1},
		{0, 0, 0},
	},
	KindL: {
		{0, 0, 1},
		{1, 1, 1},
		{0, 0, 0},
	},
}

// SpawnX and SpawnY are the fixed top-left coordinates every piece spawns
// at, regardless of kind (spec.md §4.1).
const (
	SpawnX = 3
	SpawnY = 0
)

// Piece is a tetromino on a board: its kind, its shape grid (mutated only
// by rotation) and its top-left position. Position is unconstrained here —
// validity against a board is Board's job (spec.md §4.2).
type Piece struct {
	Kind  Kind
	Shape [][]int
	X, Y  int
}

// NewPiece spawns a fresh piece of the given kind at the fixed spawn point.
func NewPiece(kind Kind) *Piece {
	return &Piece{
		Kind:  kind,
		Shape: cloneShape(spawnShapes[kind]),
		X:     SpawnX,
		Y:     SpawnY,
	}
}

func cloneShape(shape [][]int) [][]int {
	out := make([][]int, len(shape))
	for i, row := range shape {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Clone returns a deep copy of the piece, used to try a rotation or move
// before committing it to the board.
func (p *Piece) Clone() *Piece {
	return &Piece{
		Kind:  p.Kind,
		Shape: cloneShape(p.Shape),
		X:     p.X,
		Y:     p.Y,
	}
}

// Cells returns the relative (col, row) offsets of every filled cell in
// the piece's current shape.
func (p *Piece) Cells() [][2]int {
	cells := make([][2]int, 0, 4)
	for row, line := range p.Shape {
		for col, v := range line {
			if v != 0 {
				cells = append(cells, [2]int{col, row})
			}
		}
	}
	return cells
}

// rotateCW rotates a square shape grid 90 degrees clockwise via a
// transpose-and-reverse, per spec.md §4.1.
func rotateCW(shape [][]int) [][]int {
	n := len(shape)
	rotated := make([][]int, n)
	for i := range rotated {
		rotated[i] = make([]int, n)
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			rotated[c][n-1-r] = shape[r][c]
		}
	}
	return rotated
}

// Rotate applies a 90-degree clockwise rotation to the piece's shape in
// place. O is a fixed point and is left untouched. Callers that need to
// validate before committing should rotate a Clone() first.
func (p *Piece) Rotate() {
	if p.Kind == KindO {
		return
	}
	p.Shape = rotateCW(p.Shape)
}
