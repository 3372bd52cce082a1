package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPieceSpawnsAtFixedOrigin(t *testing.T) {
	for _, k := range AllKinds {
		p := NewPiece(k)
		assert.Equal(t, SpawnX, p.X)
		assert.Equal(t, SpawnY, p.Y)
		assert.NotEmpty(t, p.Cells())
	}
}

func TestRotateOIsFixedPoint(t *testing.T) {
	p := NewPiece(KindO)
	before := p.Cells()
	p.Rotate()
	assert.Equal(t, before, p.Cells())
}

func TestRotateFourTimesReturnsToOriginal(t *testing.T) {
	for _, k := range AllKinds {
		p := NewPiece(k)
		original := cloneShape(p.Shape)
		for i := 0; i < 4; i++ {
			p.Rotate()
		}
		assert.Equal(t, original, p.Shape, "kind %s should return to its original shape after 4 rotations", k)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := NewPiece(KindT)
	c := p.Clone()
	c.X = 99
	c.Rotate()
	assert.NotEqual(t, p.X, c.X)
	assert.NotEqual(t, p.Shape, c.Shape)
}

func TestKindStringTags(t *testing.T) {
	want := map[Kind]string{
		KindI: "I", KindO: "O", KindT: "T", KindS: "S",
		KindZ: "Z", KindJ: "J", KindL: "L",
	}
	for k, tag := range want {
		assert.Equal(t, tag, k.String())
	}
}
