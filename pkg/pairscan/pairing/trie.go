package pairing

import (
	"sort"
)

// trieNode is one node of the preview-name trie. Child keys are kept
// sorted so the lexicographically first candidate in any subtree is
// reached by always taking the smallest key. The queue holds entry
// positions for the base name ending at this node, oldest first.
type trieNode struct {
	children map[byte]*trieNode
	keys     []byte
	queue    []int
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

// trie indexes preview base names for best-match lookup. Built fresh
// for each pairing call; candidates are consumed as they are taken.
type trie struct {
	root *trieNode
	size int
}

func newTrie() *trie {
	return &trie{root: newTrieNode()}
}

// insert registers a preview entry position under its base name.
func (t *trie) insert(base string, pos int) {
	node := t.root
	for i := 0; i < len(base); i++ {
		c := base[i]
		child, ok := node.children[c]
		if !ok {
			child = newTrieNode()
			node.children[c] = child
			node.insertKey(c)
		}
		node = child
	}
	node.queue = append(node.queue, pos)
	t.size++
}

// insertKey places c into the sorted key slice.
func (n *trieNode) insertKey(c byte) {
	i := sort.Search(len(n.keys), func(i int) bool { return n.keys[i] >= c })
	n.keys = append(n.keys, 0)
	copy(n.keys[i+1:], n.keys[i:])
	n.keys[i] = c
}

// takeBest consumes and returns the best live candidate for an archive
// base name. Exact equality wins; otherwise the candidate sharing the
// longest common prefix, and among those the lexicographically first.
// Candidates must share at least the leading character; with no shared
// prefix there is no match.
func (t *trie) takeBest(base string) (int, bool) {
	if t.size == 0 {
		return 0, false
	}

	// Descend as far as the name allows, recording the node path.
	path := make([]*trieNode, 1, len(base)+1)
	path[0] = t.root
	node := t.root
	for i := 0; i < len(base); i++ {
		child, ok := node.children[base[i]]
		if !ok {
			break
		}
		node = child
		path = append(path, node)
	}

	// Exact match wins outright.
	if len(path) == len(base)+1 {
		if pos, ok := node.take(); ok {
			t.size--
			return pos, true
		}
	}

	// Walk back up: the deepest level still holding a live candidate
	// has the longest common prefix. Level zero is the root, where
	// nothing is shared, so it is never considered.
	for d := len(path) - 1; d >= 1; d-- {
		if pos, ok := path[d].takeFirst(); ok {
			t.size--
			return pos, true
		}
	}
	return 0, false
}

// take pops the oldest candidate ending exactly at this node.
func (n *trieNode) take() (int, bool) {
	if len(n.queue) == 0 {
		return 0, false
	}
	pos := n.queue[0]
	n.queue = n.queue[1:]
	return pos, true
}

// takeFirst pops the oldest candidate of the lexicographically first
// live base name in this subtree. A name ending at the node itself
// precedes every longer name below it.
func (n *trieNode) takeFirst() (int, bool) {
	if pos, ok := n.take(); ok {
		return pos, true
	}
	for _, c := range n.keys {
		if pos, ok := n.children[c].takeFirst(); ok {
			return pos, true
		}
	}
	return 0, false
}
