package world

import (
	"encoding/binary"

	iradix "github.com/hashicorp/go-immutable-radix"

	"gridplan/internal/domain/grid"
)

// Objects is a persistent position-ordered map from cell to object type.
// Set and Delete return a new map and leave the receiver untouched, so
// states can share structure with their parents.
type Objects struct {
	tree *iradix.Tree
}

func NewObjects() Objects {
	return Objects{tree: iradix.New()}
}

func ObjectsOf(m map[grid.Position]rune) Objects {
	txn := iradix.New().Txn()
	for p, r := range m {
		txn.Insert(posKey(p), r)
	}
	return Objects{tree: txn.Commit()}
}

func posKey(p grid.Position) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint16(k[0:2], uint16(p.Row))
	binary.BigEndian.PutUint16(k[2:4], uint16(p.Col))
	return k
}

func keyPos(k []byte) grid.Position {
	return grid.Position{
		Row: int(binary.BigEndian.Uint16(k[0:2])),
		Col: int(binary.BigEndian.Uint16(k[2:4])),
	}
}

func (o Objects) root() *iradix.Tree {
	if o.tree == nil {
		return iradix.New()
	}
	return o.tree
}

func (o Objects) Get(p grid.Position) (rune, bool) {
	if o.tree == nil {
		return 0, false
	}
	v, ok := o.tree.Get(posKey(p))
	if !ok {
		return 0, false
	}
	return v.(rune), true
}

func (o Objects) Has(p grid.Position) bool {
	_, ok := o.Get(p)
	return ok
}

func (o Objects) Set(p grid.Position, r rune) Objects {
	t, _, _ := o.root().Insert(posKey(p), r)
	return Objects{tree: t}
}

func (o Objects) Delete(p grid.Position) Objects {
	if o.tree == nil {
		return o
	}
	t, _, _ := o.tree.Delete(posKey(p))
	return Objects{tree: t}
}

func (o Objects) Len() int {
	if o.tree == nil {
		return 0
	}
	return o.tree.Len()
}

// Each visits entries in position order until fn returns false.
func (o Objects) Each(fn func(p grid.Position, r rune) bool) {
	if o.tree == nil {
		return
	}
	o.tree.Root().Walk(func(k []byte, v interface{}) bool {
		return !fn(keyPos(k), v.(rune))
	})
}

// Find returns the first position holding r.
func (o Objects) Find(r rune) (grid.Position, bool) {
	var (
		found grid.Position
		ok    bool
	)
	o.Each(func(p grid.Position, v rune) bool {
		if v == r {
			found, ok = p, true
			return false
		}
		return true
	})
	return found, ok
}

func (o Objects) Positions() []grid.Position {
	out := make([]grid.Position, 0, o.Len())
	o.Each(func(p grid.Position, _ rune) bool {
		out = append(out, p)
		return true
	})
	return out
}

func (o Objects) Map() map[grid.Position]rune {
	out := make(map[grid.Position]rune, o.Len())
	o.Each(func(p grid.Position, r rune) bool {
		out[p] = r
		return true
	})
	return out
}

func (o Objects) Equal(other Objects) bool {
	if o.tree == other.tree {
		return true
	}
	if o.Len() != other.Len() {
		return false
	}
	equal := true
	o.Each(func(p grid.Position, r rune) bool {
		v, ok := other.Get(p)
		equal = ok && v == r
		return equal
	})
	return equal
}

func (o Objects) appendKey(buf []byte) []byte {
	o.Each(func(p grid.Position, r rune) bool {
		buf = append(buf, byte(p.Row>>8), byte(p.Row), byte(p.Col>>8), byte(p.Col), byte(r))
		return true
	})
	return buf
}
