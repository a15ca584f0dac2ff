package consensus

import "sort"

// chainScore carries the fork choice ordering inputs for one chain tip.
type chainScore struct {
	tip    string
	count  uint64
	length uint64
}

// evaluateHead recomputes the canonical head over the current tree. Must
// be called with the lock held.
func (e *Engine) evaluateHead() {
	e.head = e.scores()[0].tip
}

// scores computes the ordered fork choice table: window count descending,
// then chain length descending, then lexicographically smallest tip id.
// The order is total, so independent engines holding the same block set
// agree on every entry. Must be called with the lock held.
func (e *Engine) scores() []chainScore {
	var scores []chainScore

	for id, node := range e.nodes {
		if node.status != StatusValidated && node.status != StatusFinalized {
			continue
		}
		if e.hasViableChild(node) {
			continue
		}

		scores = append(scores, chainScore{
			tip:    id,
			count:  e.windowCount(id),
			length: e.chainLength(id),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].count != scores[j].count {
			return scores[i].count > scores[j].count
		}
		if scores[i].length != scores[j].length {
			return scores[i].length > scores[j].length
		}
		return scores[i].tip < scores[j].tip
	})

	return scores
}

// hasViableChild reports whether any child of the node is still part of a
// live chain.
func (e *Engine) hasViableChild(node *blockNode) bool {
	for _, childID := range node.children {
		child, exists := e.nodes[childID]
		if !exists {
			continue
		}
		if child.status == StatusValidated || child.status == StatusFinalized {
			return true
		}
	}

	return false
}

// windowCount counts the blocks on the chain ending at id whose slots lie
// inside the trailing density window. The genesis anchor at slot zero is
// not a produced block and never counts. Must be called with the lock
// held.
func (e *Engine) windowCount(id string) uint64 {
	w := e.genesis.DensityWindow

	var count uint64
	for node := e.nodes[id]; node != nil && node.slot > 0; node = e.nodes[node.parentID] {

		// Slots strictly decrease toward the root, so the first block
		// below the window ends the walk.
		if node.slot+w <= e.currentSlot {
			break
		}
		if node.slot <= e.currentSlot {
			count++
		}
	}

	return count
}

// chainLength counts the produced blocks on the chain ending at id. Must
// be called with the lock held.
func (e *Engine) chainLength(id string) uint64 {
	var length uint64
	for node := e.nodes[id]; node != nil && node.slot > 0; node = e.nodes[node.parentID] {
		length++
	}

	return length
}

// isDescendant reports whether id sits inside the subtree rooted at
// ancestor, the ancestor itself included. Must be called with the lock
// held.
func (e *Engine) isDescendant(id string, ancestor string) bool {
	for node := e.nodes[id]; node != nil; node = e.nodes[node.parentID] {
		if node.id == ancestor {
			return true
		}
	}

	return false
}

// pathFromRoot returns the produced block ids from the oldest ancestor
// down to id, genesis anchor excluded. Must be called with the lock held.
func (e *Engine) pathFromRoot(id string) []string {
	var path []string
	for node := e.nodes[id]; node != nil && node.slot > 0; node = e.nodes[node.parentID] {
		path = append(path, node.id)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

// finalizeBuried finalizes every canonical block buried at least the
// confirmation depth below the head and orphans the validated blocks
// that fall outside the newly finalized block's subtree. Must be called
// with the lock held.
func (e *Engine) finalizeBuried() (finalized []string, orphaned []string) {
	path := e.pathFromRoot(e.head)

	depth := int(e.genesis.ConfirmationDepth)
	if len(path) <= depth {
		return nil, nil
	}

	for _, id := range path[:len(path)-depth] {
		node := e.nodes[id]
		if node.status == StatusFinalized {
			continue
		}
		node.status = StatusFinalized
		finalized = append(finalized, id)
	}

	if len(finalized) == 0 {
		return nil, nil
	}

	e.finalized = path[len(path)-depth-1]

	for id, node := range e.nodes {
		if node.status != StatusValidated {
			continue
		}
		if !e.isDescendant(id, e.finalized) {
			node.status = StatusOrphaned
			orphaned = append(orphaned, id)
		}
	}

	sort.Strings(orphaned)

	return finalized, orphaned
}
