package alloc

// bin is one size class: a doubly linked list of free chunks ordered by
// non-decreasing size. The head always has a nil prev link.
type bin struct {
	head  *chunk
	count int
}

// insertFree files c under its size class, keeping the list ordered.
func (a *Allocator) insertFree(c *chunk) {
	size := c.size()
	b := &a.bins[a.classes.classOf(size)]
	l := c.links()

	if b.head == nil || b.head.size() >= size {
		l.prev = nil
		l.next = b.head
		if b.head != nil {
			b.head.links().prev = c
		}
		b.head = c
	} else {
		cur := b.head
		for {
			n := cur.links().next
			if n == nil || n.size() >= size {
				break
			}
			cur = n
		}
		next := cur.links().next
		l.prev = cur
		l.next = next
		cur.links().next = c
		if next != nil {
			next.links().prev = c
		}
	}
	b.count++
}

// removeFree unlinks c from its size class in O(1). c must still carry the
// size it was filed under.
func (a *Allocator) removeFree(c *chunk) {
	l := c.links()
	if l.prev != nil {
		l.prev.links().next = l.next
	} else {
		a.bins[a.classes.classOf(c.size())].head = l.next
	}
	if l.next != nil {
		l.next.links().prev = l.prev
	}
	a.bins[a.classes.classOf(c.size())].count--
	l.next = nil
	l.prev = nil
}

// findFree returns the first free chunk of at least words, scanning from the
// exact class upward. Returns nil when no bin holds a fit.
func (a *Allocator) findFree(words uintptr) *chunk {
	for sc := a.classes.classOf(words); sc < len(a.bins); sc++ {
		for c := a.bins[sc].head; c != nil; c = c.links().next {
			if c.size() >= words {
				return c
			}
		}
	}
	return nil
}
