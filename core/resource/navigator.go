package resource

// Navigator is the stack of nodes from a category root to the current position.
// An empty path means "at the root of the category".
//
// The nodes are snapshots: after a write at the current path call RefreshTail, or call
// Sync to re-derive every node from the store by id.
type Navigator struct {
	path []Node
}

// Depth is the number of levels below the category root.
func (nav *Navigator) Depth() int { return len(nav.path) }

func (nav *Navigator) AtRoot() bool { return len(nav.path) == 0 }

// Nodes returns a copy of the current path.
func (nav *Navigator) Nodes() []Node {
	return append([]Node(nil), nav.path...)
}

// IDs returns the node ids of the current path, the address used by Store.
func (nav *Navigator) IDs() []string {
	ids := make([]string, len(nav.path))
	for i, n := range nav.path {
		ids[i] = n.ID
	}
	return ids
}

// Tail returns the last node of the path; ok is false at root.
func (nav *Navigator) Tail() (Node, bool) {
	if len(nav.path) == 0 {
		return Node{}, false
	}
	return nav.path[len(nav.path)-1], true
}

// TailChildren returns the cached children of the tail (nil at root).
func (nav *Navigator) TailChildren() []Node {
	tail, ok := nav.Tail()
	if !ok {
		return nil
	}
	return tail.Children
}

// Descend appends node to the path.
func (nav *Navigator) Descend(node Node) {
	nav.path = append(nav.path, node)
}

// AscendOne removes the last node; no-op at root.
func (nav *Navigator) AscendOne() {
	if len(nav.path) > 0 {
		nav.path = nav.path[:len(nav.path)-1]
	}
}

// JumpTo truncates the path to index+1 nodes (breadcrumb navigation).
// Any index < 0 resets to root; an index past the tail is a no-op.
func (nav *Navigator) JumpTo(index int) {
	switch {
	case index < 0:
		nav.Reset()
	case index+1 < len(nav.path):
		nav.path = nav.path[:index+1]
	}
}

func (nav *Navigator) Reset() { nav.path = nil }

// RefreshTail replaces the cached children of the tail after a successful write of the
// children list at the current path.
func (nav *Navigator) RefreshTail(children []Node) {
	if len(nav.path) == 0 {
		return
	}
	// copy so earlier Nodes() results keep their snapshot
	path := append([]Node(nil), nav.path...)
	tail := path[len(path)-1]
	tail.Children = cloneNodes(children)
	path[len(path)-1] = tail
	nav.path = path
}

// Sync re-derives every path node from the store by id. If any id is gone (the tree
// was edited out from under this navigator) the path is reset to root and false is
// returned.
func (nav *Navigator) Sync(store *Store, class, category string) bool {
	if len(nav.path) == 0 {
		return true
	}
	nodes, ok := store.Resolve(class, category, nav.IDs())
	if !ok {
		nav.Reset()
		return false
	}
	nav.path = nodes
	return true
}
