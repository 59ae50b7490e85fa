// Package list is a specialized adaption of `container/list` for LRU bookkeeping.
package list

import "iter"

type (
	// A Node is an element of a List. Nodes are created by the list
	// and remain valid until removed from it; a node must never be
	// inserted into more than one list.
	Node[Key comparable, Value any] struct {
		next, prev *Node[Key, Value]
		// Key is the identifier of the data this node is bound to.
		// It is fixed for the node's lifetime.
		Key   Key
		Value Value
	}
	// A List is a doubly linked sequence ordered from most recently
	// used (front) to least recently used (back).
	// The zero value is an empty list ready to use.
	List[Key comparable, Value any] struct {
		front, back *Node[Key, Value]
		length      int
	}
)

// Next returns the node closer to the back, or nil at the back.
func (n *Node[Key, Value]) Next() *Node[Key, Value] { return n.next }

// Prev returns the node closer to the front, or nil at the front.
func (n *Node[Key, Value]) Prev() *Node[Key, Value] { return n.prev }

// Len returns the number of nodes in the list.
func (l *List[Key, Value]) Len() int { return l.length }

// Front returns the most recently used node, or nil if the list is empty.
func (l *List[Key, Value]) Front() *Node[Key, Value] { return l.front }

// Back returns the least recently used node, or nil if the list is empty.
func (l *List[Key, Value]) Back() *Node[Key, Value] { return l.back }

// PushFront inserts a new node carrying key and value at the front
// and returns it.
func (l *List[Key, Value]) PushFront(key Key, value Value) *Node[Key, Value] {
	node := &Node[Key, Value]{
		Key:   key,
		Value: value,
		next:  l.front,
	}
	if l.front != nil {
		l.front.prev = node
	} else {
		l.back = node
	}
	l.front = node
	l.length++
	return node
}

// MoveToFront detaches node and relinks it at the front.
// node must be an element of l.
func (l *List[Key, Value]) MoveToFront(node *Node[Key, Value]) {
	if node == l.front {
		return
	}
	l.unlink(node)
	node.prev = nil
	node.next = l.front
	l.front.prev = node
	l.front = node
	l.length++
}

// Remove detaches node from the list.
// node must be an element of l.
func (l *List[Key, Value]) Remove(node *Node[Key, Value]) {
	l.unlink(node)
	node.next = nil
	node.prev = nil
}

// PopBack detaches and returns the least recently used node,
// or nil if the list is empty.
func (l *List[Key, Value]) PopBack() *Node[Key, Value] {
	node := l.back
	if node == nil {
		return nil
	}
	l.Remove(node)
	return node
}

// unlink splices node out of the chain without clearing its pointers.
func (l *List[Key, Value]) unlink(node *Node[Key, Value]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.front = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.back = node.prev
	}
	l.length--
}

// Iter returns an iterator over the nodes from front to back.
// The list must not be mutated during iteration.
func (l *List[Key, Value]) Iter() iter.Seq[*Node[Key, Value]] {
	return func(yield func(*Node[Key, Value]) bool) {
		for node := l.front; node != nil; node = node.next {
			if !yield(node) {
				return
			}
		}
	}
}
