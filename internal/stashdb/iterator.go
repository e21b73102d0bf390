package stashdb

// iterator holding the iterators state
type iterator struct {
	tree *redBlackTree
	node *redBlackNode
	pos  position
}

type position byte

const (
	begin, onmyway, end position = 0, 1, 2
)

// iterator returns an iterator positioned before the first row
//
// IMPORTANT: iterator does not provide thread safety
func (t *redBlackTree) iterator() iterator {
	return iterator{tree: t, node: nil, pos: begin}
}

// next moves the iterator to the next element
func (it *iterator) next() bool {
	if it.pos == end {
		it.node = nil
		return false
	}

	if it.pos == begin {
		minNode := it.min()
		if minNode == nil {
			it.end()
			return false
		}
		it.node = minNode
		it.pos = onmyway
		return true
	}

	if it.node.right != nil {
		it.node = it.node.right
		for it.node.left != nil {
			it.node = it.node.left
		}
		return true
	}

	for it.node.parent != nil {
		node := it.node
		it.node = it.node.parent
		if node == it.node.left {
			return true
		}
	}

	it.end()
	return false
}

// seek moves the iterator to the first row at or after key.
// An empty key means the first row.
func (it *iterator) seek(key []byte) bool {
	if len(key) == 0 {
		it.begin()
		return it.next()
	}
	node := it.tree.ceiling(key)
	if node == nil {
		it.end()
		return false
	}
	it.node = node
	it.pos = onmyway
	return true
}

// valid reports whether the iterator stands on a row
func (it *iterator) valid() bool {
	return it.pos == onmyway
}

// begin resets the iterator to one-before-first
func (it *iterator) begin() {
	it.node = nil
	it.pos = begin
}

// end moves the iterator to one-past-the-end
func (it *iterator) end() {
	it.node = nil
	it.pos = end
}

// min returns the minimal current or nil
func (it *iterator) min() *redBlackNode {
	var minNode *redBlackNode
	for curNode := it.tree.root; curNode != nil; curNode = curNode.left {
		minNode = curNode
	}
	return minNode
}
