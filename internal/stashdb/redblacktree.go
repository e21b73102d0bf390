package stashdb

import (
	"bytes"
	"fmt"
	"strings"
)

type color bool

const (
	black, red color = true, false
)

// redBlackTree is the ordered row index, keys compare as raw bytes.
//
// IMPORTANT: redBlackTree does not provide thread safety
type redBlackTree struct {
	root *redBlackNode
	size int
}

// redBlackNode is a tree element
type redBlackNode struct {
	key    []byte
	value  []byte
	color  color
	left   *redBlackNode
	right  *redBlackNode
	parent *redBlackNode
}

func newRedBlackTree() *redBlackTree {
	return &redBlackTree{}
}

// put inserts or replaces key, it reports whether the key is new.
func (t *redBlackTree) put(key, value []byte) bool {
	if t.root == nil {
		t.root = &redBlackNode{key: key, value: value, color: black}
		t.size++
		return true
	}

	curNode := t.root
	for {
		switch bytes.Compare(key, curNode.key) {
		case 0:
			curNode.value = value
			return false
		case -1:
			if curNode.left == nil {
				curNode.left = &redBlackNode{key: key, value: value, color: red, parent: curNode}
				t.insertCase1(curNode.left)
				t.size++
				return true
			}
			curNode = curNode.left
		default:
			if curNode.right == nil {
				curNode.right = &redBlackNode{key: key, value: value, color: red, parent: curNode}
				t.insertCase1(curNode.right)
				t.size++
				return true
			}
			curNode = curNode.right
		}
	}
}

// get searches the node in the tree, nil not found
func (t *redBlackTree) get(key []byte) *redBlackNode {
	curNode := t.root
	for curNode != nil {
		switch bytes.Compare(key, curNode.key) {
		case 0:
			return curNode
		case -1:
			curNode = curNode.left
		default:
			curNode = curNode.right
		}
	}
	return nil
}

// ceiling finds the smallest node with a key at or after key, nil if there is none.
func (t *redBlackTree) ceiling(key []byte) *redBlackNode {
	var foundNode *redBlackNode
	for curNode := t.root; curNode != nil; {
		switch bytes.Compare(key, curNode.key) {
		case 0:
			return curNode
		case -1:
			foundNode = curNode
			curNode = curNode.left
		default:
			curNode = curNode.right
		}
	}
	return foundNode
}

// remove the node from the tree, it reports whether the key was there.
func (t *redBlackTree) remove(key []byte) bool {
	delNode := t.get(key)
	if delNode == nil {
		return false
	}

	if delNode.left != nil && delNode.right != nil {
		replacementNode := delNode.left.maximumNode()
		delNode.key = replacementNode.key
		delNode.value = replacementNode.value
		delNode = replacementNode
	}

	childNode := delNode.left
	if childNode == nil {
		childNode = delNode.right
	}
	if delNode.color == black {
		delNode.color = nodeColor(childNode)
		t.deleteCase1(delNode)
	}
	t.replaceNode(delNode, childNode)
	if delNode.parent == nil && childNode != nil {
		childNode.color = black
	}

	t.size--
	return true
}

// sizeof returns number of nodes
func (t *redBlackTree) sizeof() int {
	return t.size
}

// sizeof returns the number of elements in the subtree.
func (n *redBlackNode) sizeof() int {
	if n == nil {
		return 0
	}
	return 1 + n.left.sizeof() + n.right.sizeof()
}

// clear removes all nodes from the tree.
func (t *redBlackTree) clear() {
	t.root = nil
	t.size = 0
}

// String implements Stringer interface
func (t *redBlackTree) String() string {
	var sb strings.Builder
	sb.WriteString("redBlackTree\n")
	if t.root != nil {
		output(t.root, "", true, &sb)
	}
	return sb.String()
}

func (n *redBlackNode) String() string {
	c := "R"
	if n.color == black {
		c = "B"
	}
	return fmt.Sprintf("%s %x", c, n.key)
}

func output(node *redBlackNode, prefix string, isTail bool, sb *strings.Builder) {
	if node.right != nil {
		newPrefix := prefix
		if isTail {
			newPrefix += "│   "
		} else {
			newPrefix += "    "
		}
		output(node.right, newPrefix, false, sb)
	}

	sb.WriteString(prefix)
	if isTail {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("┌── ")
	}

	sb.WriteString(node.String() + "\n")
	if node.left != nil {
		newPrefix := prefix
		if isTail {
			newPrefix += "    "
		} else {
			newPrefix += "│   "
		}
		output(node.left, newPrefix, true, sb)
	}
}

func (n *redBlackNode) grandparent() *redBlackNode {
	if n != nil && n.parent != nil {
		return n.parent.parent
	}
	return nil
}

func (n *redBlackNode) uncle() *redBlackNode {
	if n == nil || n.parent == nil || n.parent.parent == nil {
		return nil
	}
	return n.parent.sibling()
}

func (n *redBlackNode) sibling() *redBlackNode {
	if n == nil || n.parent == nil {
		return nil
	}
	if n == n.parent.left {
		return n.parent.right
	}
	return n.parent.left
}

func (n *redBlackNode) maximumNode() *redBlackNode {
	if n == nil {
		return nil
	}
	curNode := n
	for curNode.right != nil {
		curNode = curNode.right
	}
	return curNode
}

func (t *redBlackTree) rotateLeft(node *redBlackNode) {
	right := node.right
	t.replaceNode(node, right)
	node.right = right.left
	if right.left != nil {
		right.left.parent = node
	}
	right.left = node
	node.parent = right
}

func (t *redBlackTree) rotateRight(node *redBlackNode) {
	left := node.left
	t.replaceNode(node, left)
	node.left = left.right
	if left.right != nil {
		left.right.parent = node
	}
	left.right = node
	node.parent = left
}

func (t *redBlackTree) replaceNode(old *redBlackNode, new *redBlackNode) {
	if old.parent == nil {
		t.root = new
	} else if old == old.parent.left {
		old.parent.left = new
	} else {
		old.parent.right = new
	}
	if new != nil {
		new.parent = old.parent
	}
}

func (t *redBlackTree) insertCase1(node *redBlackNode) {
	if node.parent == nil {
		node.color = black
		return
	}
	t.insertCase2(node)
}

func (t *redBlackTree) insertCase2(node *redBlackNode) {
	if nodeColor(node.parent) == black {
		return
	}
	t.insertCase3(node)
}

func (t *redBlackTree) insertCase3(node *redBlackNode) {
	uncleNode := node.uncle()
	if nodeColor(uncleNode) == red {
		node.parent.color = black
		uncleNode.color = black
		node.grandparent().color = red
		t.insertCase1(node.grandparent())
		return
	}
	t.insertCase4(node)
}

func (t *redBlackTree) insertCase4(node *redBlackNode) {
	grandparentNode := node.grandparent()
	if node == node.parent.right && node.parent == grandparentNode.left {
		t.rotateLeft(node.parent)
		node = node.left
	} else if node == node.parent.left && node.parent == grandparentNode.right {
		t.rotateRight(node.parent)
		node = node.right
	}
	t.insertCase5(node)
}

func (t *redBlackTree) insertCase5(node *redBlackNode) {
	node.parent.color = black
	grandparentNode := node.grandparent()
	grandparentNode.color = red
	if node == node.parent.left && node.parent == grandparentNode.left {
		t.rotateRight(grandparentNode)
	} else if node == node.parent.right && node.parent == grandparentNode.right {
		t.rotateLeft(grandparentNode)
	}
}

func (t *redBlackTree) deleteCase1(node *redBlackNode) {
	if node.parent == nil {
		return
	}
	t.deleteCase2(node)
}

func (t *redBlackTree) deleteCase2(node *redBlackNode) {
	siblingNode := node.sibling()
	if nodeColor(siblingNode) == red {
		node.parent.color = red
		siblingNode.color = black
		if node == node.parent.left {
			t.rotateLeft(node.parent)
		} else {
			t.rotateRight(node.parent)
		}
	}
	t.deleteCase3(node)
}

func (t *redBlackTree) deleteCase3(node *redBlackNode) {
	siblingNode := node.sibling()
	if nodeColor(node.parent) == black &&
		nodeColor(siblingNode) == black &&
		nodeColor(siblingNode.left) == black &&
		nodeColor(siblingNode.right) == black {
		siblingNode.color = red
		t.deleteCase1(node.parent)
		return
	}
	t.deleteCase4(node)
}

func (t *redBlackTree) deleteCase4(node *redBlackNode) {
	siblingNode := node.sibling()
	if nodeColor(node.parent) == red &&
		nodeColor(siblingNode) == black &&
		nodeColor(siblingNode.left) == black &&
		nodeColor(siblingNode.right) == black {
		siblingNode.color = red
		node.parent.color = black
		return
	}
	t.deleteCase5(node)
}

func (t *redBlackTree) deleteCase5(node *redBlackNode) {
	siblingNode := node.sibling()
	if node == node.parent.left &&
		nodeColor(siblingNode) == black &&
		nodeColor(siblingNode.left) == red &&
		nodeColor(siblingNode.right) == black {
		siblingNode.color = red
		siblingNode.left.color = black
		t.rotateRight(siblingNode)
	} else if node == node.parent.right &&
		nodeColor(siblingNode) == black &&
		nodeColor(siblingNode.right) == red &&
		nodeColor(siblingNode.left) == black {
		siblingNode.color = red
		siblingNode.right.color = black
		t.rotateLeft(siblingNode)
	}
	t.deleteCase6(node)
}

func (t *redBlackTree) deleteCase6(node *redBlackNode) {
	siblingNode := node.sibling()
	siblingNode.color = nodeColor(node.parent)
	node.parent.color = black
	if node == node.parent.left && nodeColor(siblingNode.right) == red {
		siblingNode.right.color = black
		t.rotateLeft(node.parent)
	} else if nodeColor(siblingNode.left) == red {
		siblingNode.left.color = black
		t.rotateRight(node.parent)
	}
}

func nodeColor(node *redBlackNode) color {
	if node == nil {
		return black
	}
	return node.color
}
