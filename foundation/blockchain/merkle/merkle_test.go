// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.

package merkle_test

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"hash"
	"testing"

	"github.com/foldchain/blockchain/foundation/blockchain/merkle"
)

// Data uses the sha256 hashing algorithm for the merkle tree.
type Data struct {
	x string
}

// Hash hashes the values using sha256.
func (d Data) Hash() ([]byte, error) {
	h := sha256.New()
	if _, err := h.Write([]byte(d.x)); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// Equals tests for equality of two pieces of data.
func (d Data) Equals(other Data) bool {
	return d.x == other.x
}

// =============================================================================

var table = []struct {
	testCaseId   int
	hashStrategy func() hash.Hash
	data         []Data
}{
	{
		testCaseId:   0,
		hashStrategy: sha256.New,
		data:         []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}, {x: "Hola"}},
	},
	{
		testCaseId:   1,
		hashStrategy: sha256.New,
		data:         []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}},
	},
	{
		testCaseId:   2,
		hashStrategy: sha256.New,
		data:         []Data{{x: "Hello"}},
	},
	{
		testCaseId:   3,
		hashStrategy: md5.New,
		data:         []Data{{x: "123"}, {x: "234"}, {x: "345"}, {x: "456"}, {x: "567"}, {x: "678"}, {x: "789"}},
	},
}

// expectedRoot recomputes the root with explicit pair hashing, duplicating
// the last hash at odd levels the way the tree does.
func expectedRoot(t *testing.T, data []Data, hashStrategy func() hash.Hash) []byte {
	t.Helper()

	var level [][]byte
	for _, d := range data {
		h, err := d.Hash()
		if err != nil {
			t.Fatalf("unable to hash data: %v", err)
		}
		level = append(level, h)
	}

	if len(level)%2 == 1 {
		level = append(level, level[len(level)-1])
	}

	for len(level) > 1 {
		var next [][]byte
		for i := 0; i < len(level); i += 2 {
			right := i + 1
			if right == len(level) {
				right = i
			}
			h := hashStrategy()
			if _, err := h.Write(append(append([]byte{}, level[i]...), level[right]...)); err != nil {
				t.Fatalf("unable to hash pair: %v", err)
			}
			next = append(next, h.Sum(nil))
		}
		level = next
	}

	return level[0]
}

// =============================================================================

func Test_MerkleRoot(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data, merkle.WithHashStrategy[Data](table[i].hashStrategy))
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		want := expectedRoot(t, table[i].data, table[i].hashStrategy)
		if !bytes.Equal(tree.MerkleRoot, want) {
			t.Errorf("[case:%d] error: expected hash equal to %v got %v", table[i].testCaseId, want, tree.MerkleRoot)
		}
	}
}

func Test_DeterministicRoot(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree1, err := merkle.NewTree(table[i].data, merkle.WithHashStrategy[Data](table[i].hashStrategy))
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		tree2, err := merkle.NewTree(table[i].data, merkle.WithHashStrategy[Data](table[i].hashStrategy))
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if !bytes.Equal(tree1.MerkleRoot, tree2.MerkleRoot) {
			t.Errorf("[case:%d] error: expected identical roots for identical leafs", table[i].testCaseId)
		}
	}
}

func Test_EmptyTree(t *testing.T) {
	if _, err := merkle.NewTree([]Data{}); err == nil {
		t.Errorf("error: expected an error constructing a tree with no content")
	}
}

func Test_RebuildTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data, merkle.WithHashStrategy[Data](table[i].hashStrategy))
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		err = tree.Rebuild()
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		want := expectedRoot(t, table[i].data, table[i].hashStrategy)
		if !bytes.Equal(tree.MerkleRoot, want) {
			t.Errorf("[case:%d] error: expected hash equal to %v got %v", table[i].testCaseId, want, tree.MerkleRoot)
		}
	}
}

func Test_VerifyTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data, merkle.WithHashStrategy[Data](table[i].hashStrategy))
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if err := tree.Verify(); err != nil {
			t.Errorf("[case:%d] error: expected tree to verify: %v", table[i].testCaseId, err)
		}
	}
}

func Test_VerifyData(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data, merkle.WithHashStrategy[Data](table[i].hashStrategy))
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		for _, d := range table[i].data {
			if err := tree.VerifyData(d); err != nil {
				t.Errorf("[case:%d] error: expected data %q to verify: %v", table[i].testCaseId, d.x, err)
			}
		}
		if err := tree.VerifyData(Data{x: "NotInTree"}); err == nil {
			t.Errorf("[case:%d] error: expected missing data to fail verification", table[i].testCaseId)
		}
	}
}

func Test_ProofRoundTrip(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data, merkle.WithHashStrategy[Data](table[i].hashStrategy))
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		for index, d := range table[i].data {
			proof, order, err := tree.ProofAt(index)
			if err != nil {
				t.Errorf("[case:%d] error: unexpected proof error at index %d: %v", table[i].testCaseId, index, err)
				continue
			}
			leafHash, err := d.Hash()
			if err != nil {
				t.Errorf("[case:%d] error: unexpected hash error: %v", table[i].testCaseId, err)
				continue
			}
			if !merkle.VerifyProof(tree.MerkleRoot, leafHash, proof, order, table[i].hashStrategy) {
				t.Errorf("[case:%d] error: expected proof for index %d to verify", table[i].testCaseId, index)
			}
		}
	}
}

func Test_ProofTampered(t *testing.T) {
	tree, err := merkle.NewTree(table[0].data)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	proof, order, err := tree.Proof(table[0].data[1])
	if err != nil {
		t.Fatalf("error: unexpected proof error: %v", err)
	}

	leafHash, err := table[0].data[1].Hash()
	if err != nil {
		t.Fatalf("error: unexpected hash error: %v", err)
	}

	if !merkle.VerifyProof(tree.MerkleRoot, leafHash, proof, order) {
		t.Fatalf("error: expected untouched proof to verify")
	}

	tampered := make([][]byte, len(proof))
	for i := range proof {
		tampered[i] = append([]byte{}, proof[i]...)
	}
	tampered[0][0] ^= 0xff

	if merkle.VerifyProof(tree.MerkleRoot, leafHash, tampered, order) {
		t.Errorf("error: expected tampered proof to fail")
	}

	if merkle.VerifyProof(tree.MerkleRoot, leafHash, proof, order[:len(order)-1]) {
		t.Errorf("error: expected mismatched proof and order lengths to fail")
	}

	wrongOrder := append([]int64{}, order...)
	wrongOrder[0] = 1 - wrongOrder[0]
	if merkle.VerifyProof(tree.MerkleRoot, leafHash, proof, wrongOrder) {
		t.Errorf("error: expected reordered proof to fail")
	}
}

func Test_ProofOutOfRange(t *testing.T) {
	tree, err := merkle.NewTree(table[1].data)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if _, _, err := tree.ProofAt(-1); err == nil {
		t.Errorf("error: expected an error for a negative index")
	}

	// Index 3 lands on the duplicate padding leaf, outside the committed set.
	if _, _, err := tree.ProofAt(len(table[1].data)); err == nil {
		t.Errorf("error: expected an error for an index past the committed leafs")
	}
}

func Test_Values(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data, merkle.WithHashStrategy[Data](table[i].hashStrategy))
		if err != nil {
			t.Errorf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		values := tree.Values()
		if len(values) != len(table[i].data) {
			t.Errorf("[case:%d] error: expected %d values got %d", table[i].testCaseId, len(table[i].data), len(values))
			continue
		}
		for j, v := range values {
			if !v.Equals(table[i].data[j]) {
				t.Errorf("[case:%d] error: expected value %q at position %d got %q", table[i].testCaseId, table[i].data[j].x, j, v.x)
			}
		}
	}
}
