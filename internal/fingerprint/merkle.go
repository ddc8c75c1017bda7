package fingerprint

import (
	dErrors "lexseal/pkg/domain-errors"
)

// Tree is a binary Merkle tree over an ordered sequence of leaf digests.
// Leaf order is semantically meaningful: parents hash left||right with no
// sorting, so reordering leaves changes the root. Never mutated after
// construction; rebuilding produces a new tree.
//
// Odd-count policy: a level with an odd number of nodes duplicates its last
// digest to pair with itself. Roots are only comparable across
// implementations that apply this same policy.
type Tree struct {
	levels [][]Digest // levels[0] = leaves, last level = [root]
}

// BuildTree assembles leaf digests into a tree. A run with zero leaves is an
// error; a single leaf's root is the leaf digest itself, no hashing.
func BuildTree(leaves []Digest) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, dErrors.New(dErrors.CodeEmptyRun, "no leaves to hash")
	}

	level := make([]Digest, len(leaves))
	copy(level, leaves)

	levels := [][]Digest{level}
	for len(level) > 1 {
		next := make([]Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, Keccak256(left[:], right[:]))
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels}, nil
}

// BuildRoot is a convenience wrapper returning only the root digest.
func BuildRoot(leaves []Digest) (Digest, error) {
	t, err := BuildTree(leaves)
	if err != nil {
		return Digest{}, err
	}
	return t.Root(), nil
}

// Root returns the tree's root digest.
func (t *Tree) Root() Digest {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// LeafCount returns the number of leaves the tree was built from.
func (t *Tree) LeafCount() int {
	return len(t.levels[0])
}

// Leaves returns a copy of the leaf level.
func (t *Tree) Leaves() []Digest {
	return append([]Digest(nil), t.levels[0]...)
}

// ProofStep is one sibling on the path from a leaf to the root. Right
// reports whether the sibling sits to the right of the running hash.
type ProofStep struct {
	Sibling Digest
	Right   bool
}

// Proof is an inclusion proof for one leaf.
type Proof struct {
	LeafIndex int
	Leaf      Digest
	Steps     []ProofStep
	Root      Digest
}

// Proof returns the sibling path for the leaf at index i.
func (t *Tree) Proof(i int) (Proof, error) {
	if i < 0 || i >= len(t.levels[0]) {
		return Proof{}, dErrors.Newf(dErrors.CodeInvalidInput, "leaf index %d out of range", i)
	}

	proof := Proof{
		LeafIndex: i,
		Leaf:      t.levels[0][i],
		Root:      t.Root(),
	}

	idx := i
	for _, level := range t.levels[:len(t.levels)-1] {
		var step ProofStep
		if idx%2 == 0 {
			// Sibling on the right; a missing sibling means the node was
			// paired with itself under the odd-count policy.
			sibling := idx
			if idx+1 < len(level) {
				sibling = idx + 1
			}
			step = ProofStep{Sibling: level[sibling], Right: true}
		} else {
			step = ProofStep{Sibling: level[idx-1], Right: false}
		}
		proof.Steps = append(proof.Steps, step)
		idx /= 2
	}

	return proof, nil
}

// VerifyProof recomputes the root from a leaf and its sibling path.
func VerifyProof(p Proof) bool {
	running := p.Leaf
	for _, step := range p.Steps {
		if step.Right {
			running = Keccak256(running[:], step.Sibling[:])
		} else {
			running = Keccak256(step.Sibling[:], running[:])
		}
	}
	return running == p.Root
}
