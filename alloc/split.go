package alloc

// shrink trims the used chunk c down to words. A leftover larger than the
// split slack becomes a free chunk; if that remainder's successor is already
// free the two are merged before filing. Requires c.size() >= words.
func (a *Allocator) shrink(c *chunk, words uintptr) {
	old := c.size()
	if old-words <= a.opts.SplitSlackWords {
		return
	}

	end := c.arenaEnd()
	var next *chunk
	if !end {
		next = c.next()
	}

	c.format(words, true, c.arenaStart(), false)
	rem := c.next()
	remWords := old - words - overheadWords

	if next != nil && !next.used() {
		a.removeFree(next)
		remWords += next.size() + overheadWords
		end = next.arenaEnd()
		a.stats.CoalesceForward++
	}

	rem.format(remWords, false, false, end)
	a.stats.Splits++
	a.insertFree(rem)
}

// coalesce merges the free chunk c with free physical neighbors inside the
// same arena and returns the chunk that now starts the merged span. Neighbors
// are unlinked from their bins; c itself must not be on a free list.
func (a *Allocator) coalesce(c *chunk) *chunk {
	if !c.arenaEnd() {
		if n := c.next(); !n.used() {
			end := n.arenaEnd()
			a.removeFree(n)
			c.format(c.size()+n.size()+overheadWords, false, c.arenaStart(), end)
			a.stats.CoalesceForward++
		}
	}
	if !c.arenaStart() {
		if p := c.prev(); !p.used() {
			end := c.arenaEnd()
			a.removeFree(p)
			p.format(p.size()+c.size()+overheadWords, false, p.arenaStart(), end)
			c = p
			a.stats.CoalesceBackward++
		}
	}
	return c
}
