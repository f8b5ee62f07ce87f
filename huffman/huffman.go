// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package huffman builds a frequency-ordered binary tree over a byte
// payload, serializes that tree canonically into a bitstream, and
// compresses/decompresses payloads against it.
//
// The tree builder uses a container/heap priority queue, the same shape
// as other_examples/93485e9f_ntdkhiem-cloud-distributed-compression-platform's
// compression-huffman.go, retargeted from a 4-byte/code header format to
// the pack's own pre-order tree serialization and a length-bounded
// (rather than terminator-based) decompressor.
package huffman

import (
	"container/heap"

	"github.com/borderlands2/bl2save/bitstream"
)

// Node is a binary tree node. Leaves carry a byte value; internal nodes
// carry only the combined frequency used during construction.
type Node struct {
	Freq  int
	Byte  byte
	Leaf  bool
	Left  *Node
	Right *Node
}

// Build constructs a Huffman tree over data by repeatedly combining the
// two lowest-frequency subtrees. Ties are broken by insertion order
// (the order bytes first appear in data, then construction order for
// combined nodes), so the tree produced for a given input is always the
// same.
func Build(data []byte) *Node {
	freq := make(map[byte]int)
	var order []byte
	for _, b := range data {
		if _, ok := freq[b]; !ok {
			order = append(order, b)
		}
		freq[b]++
	}
	if len(order) == 0 {
		return nil
	}

	pq := make(priorityQueue, 0, len(order))
	heap.Init(&pq)
	seq := 0
	for _, b := range order {
		heap.Push(&pq, &item{
			node: &Node{Freq: freq[b], Byte: b, Leaf: true},
			seq:  seq,
		})
		seq++
	}

	if pq.Len() == 1 {
		// Single-symbol alphabet: wrap the lone leaf so it still has a
		// one-bit code instead of a zero-bit one (see Compress/Decompress).
		only := pq[0].node
		return &Node{Freq: only.Freq, Left: only, Right: &Node{Freq: 0, Byte: only.Byte, Leaf: true}}
	}

	for pq.Len() > 1 {
		a := heap.Pop(&pq).(*item)
		b := heap.Pop(&pq).(*item)
		combined := &Node{Freq: a.node.Freq + b.node.Freq, Left: a.node, Right: b.node}
		heap.Push(&pq, &item{node: combined, seq: seq})
		seq++
	}
	return pq[0].node
}

type item struct {
	node *Node
	seq  int
}

type priorityQueue []*item

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].node.Freq != pq[j].node.Freq {
		return pq[i].node.Freq < pq[j].node.Freq
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*item))
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return it
}

// SerializeTree writes tree to w as a pre-order traversal: a leaf is a
// `1` bit followed by its 8-bit byte value; an internal node is a `0`
// bit followed by its left then right subtrees.
func SerializeTree(w *bitstream.Writer, tree *Node) {
	if tree.Leaf {
		w.WriteBit(1)
		w.WriteBits(uint64(tree.Byte), 8)
		return
	}
	w.WriteBit(0)
	SerializeTree(w, tree.Left)
	SerializeTree(w, tree.Right)
}

// ParseTree reads a tree previously written by SerializeTree.
func ParseTree(r *bitstream.Reader) *Node {
	if r.ReadBit() == 1 {
		return &Node{Leaf: true, Byte: byte(r.ReadBits(8))}
	}
	left := ParseTree(r)
	right := ParseTree(r)
	return &Node{Left: left, Right: right}
}

type code struct {
	bits   uint64
	length int
}

func buildCodeTable(tree *Node) map[byte]code {
	table := make(map[byte]code)
	var walk func(n *Node, bits uint64, length int)
	walk = func(n *Node, bits uint64, length int) {
		if n.Leaf {
			if length == 0 {
				// A bare single-leaf tree (root has no children) has no
				// bit to spend distinguishing it from anything else;
				// give it a one-bit code so Compress has something to
				// write. Build never constructs a tree this shape.
				length = 1
			}
			table[n.Byte] = code{bits: bits, length: length}
			return
		}
		walk(n.Left, bits<<1, length+1)
		walk(n.Right, bits<<1|1, length+1)
	}
	walk(tree, 0, 0)
	return table
}

// Compress encodes data against tree's code table, writing codes
// MSB-first to w. The tree itself is not written here; callers that
// need a self-describing stream call SerializeTree separately (the
// envelope codec does this because the tree precedes the payload).
func Compress(w *bitstream.Writer, tree *Node, data []byte) {
	table := buildCodeTable(tree)
	for _, b := range data {
		c := table[b]
		w.WriteBits(c.bits, c.length)
	}
}

// Decompress reads exactly n bytes by walking tree one bit at a time
// from the root, restarting at the root after each leaf.
func Decompress(r *bitstream.Reader, tree *Node, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		node := tree
		for !node.Leaf {
			if r.ReadBit() == 0 {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		out = append(out, node.Byte)
	}
	return out
}
