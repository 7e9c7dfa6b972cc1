package resource

// Store is the in-memory tree store: every category tree of every class, addressed by
// (class, category, path of node ids).
//
// Reads never fail: unknown classes, categories or paths degrade to empty results.
// Writes addressed by a path report whether the path was found; a false return is a
// structural mismatch the caller must surface (the tree changed under the path).
// Store is not safe for concurrent use.
type Store struct {
	forest  Forest
	version uint64
}

func NewStore(forest Forest) *Store {
	if forest == nil {
		forest = make(Forest)
	}
	return &Store{forest: forest}
}

// Version is bumped on every successful write.
func (s *Store) Version() uint64 { return s.version }

// Forest returns a deep copy of the whole forest.
func (s *Store) Forest() Forest { return s.forest.Clone() }

// Replace swaps the whole forest, e.g. after a reload.
func (s *Store) Replace(forest Forest) {
	if forest == nil {
		forest = make(Forest)
	}
	s.forest = forest
	s.version++
}

// Bucket returns a copy of the class bucket (zero value if absent).
func (s *Store) Bucket(class string) ClassBucket {
	if _, ok := s.forest[class]; !ok {
		return ClassBucket{HiddenFeatureIDs: []string{}, Categories: map[string]CategoryTree{}}
	}
	return Forest{class: s.forest[class]}.Clone()[class]
}

// Category returns a normalized copy of a category tree.
func (s *Store) Category(class, category string) CategoryTree {
	ct := s.category(class, category)
	return CategoryTree{RootMedia: ct.RootMedia, Items: cloneNodes(ct.Items), legacy: ct.legacy}
}

func (s *Store) category(class, category string) CategoryTree {
	ct := s.forest[class].Categories[category]
	if ct.Items == nil {
		ct.Items = []Node{}
	}
	return ct
}

// Resolve walks path from the category root and returns the addressed nodes.
// ok is false when some id cannot be found at its expected level.
func (s *Store) Resolve(class, category string, path []string) (nodes []Node, ok bool) {
	level := s.category(class, category).Items
	nodes = make([]Node, 0, len(path))
	for _, id := range path {
		i := indexOf(level, id)
		if i < 0 {
			return nil, false
		}
		n := level[i]
		n.Children = cloneNodes(n.Children)
		nodes = append(nodes, n)
		level = level[i].Children
	}
	return nodes, true
}

// GetChildren returns the root items if path is empty, else the children of the last
// node of path. Not found yields an empty list.
func (s *Store) GetChildren(class, category string, path []string) []Node {
	if len(path) == 0 {
		return cloneNodes(s.category(class, category).Items)
	}
	nodes, ok := s.Resolve(class, category, path)
	if !ok || len(nodes[len(nodes)-1].Children) == 0 {
		return []Node{}
	}
	return nodes[len(nodes)-1].Children
}

// SetChildren replaces the root items (empty path, creating the bucket and category as
// needed) or the children of the node addressed by path. Every ancestor is rebuilt
// copy-on-write. It returns false, leaving the store untouched, if path is stale.
func (s *Store) SetChildren(class, category string, path []string, list []Node) bool {
	list = cloneNodes(list)
	if list == nil {
		list = []Node{}
	}
	if len(path) == 0 {
		s.writeCategory(class, category, func(ct CategoryTree) CategoryTree {
			ct.Items = list
			return ct
		})
		return true
	}
	return s.updateNode(class, category, path, func(n Node) Node {
		n.Children = list
		return n
	})
}

// GetRootMedia returns the category-level media.
func (s *Store) GetRootMedia(class, category string) MediaSet {
	return s.category(class, category).RootMedia
}

// SetMediaField sets one media field of the category root (empty path) or of the node
// addressed by path. url "" clears the field.
func (s *Store) SetMediaField(class, category string, path []string, kind MediaKind, url string) bool {
	if len(path) == 0 {
		s.writeCategory(class, category, func(ct CategoryTree) CategoryTree {
			ct.RootMedia = ct.RootMedia.With(kind, url)
			return ct
		})
		return true
	}
	return s.updateNode(class, category, path, func(n Node) Node {
		n.MediaSet = n.MediaSet.With(kind, url)
		return n
	})
}

// SetHidden adds or removes category from the class's hidden list.
func (s *Store) SetHidden(class, category string, hidden bool) {
	b := s.bucket(class)
	ids := make([]string, 0, len(b.HiddenFeatureIDs)+1)
	for _, id := range b.HiddenFeatureIDs {
		if id != category {
			ids = append(ids, id)
		}
	}
	if hidden {
		ids = append(ids, category)
	}
	b.HiddenFeatureIDs = ids
	s.forest[class] = b
	s.version++
}

func (s *Store) bucket(class string) ClassBucket {
	b, ok := s.forest[class]
	if !ok {
		b = ClassBucket{HiddenFeatureIDs: []string{}}
	}
	if b.Categories == nil {
		b.Categories = make(map[string]CategoryTree)
	}
	return b
}

// writeCategory applies fn to the category and stores the result in canonical shape.
func (s *Store) writeCategory(class, category string, fn func(CategoryTree) CategoryTree) {
	b := s.bucket(class)
	ct := fn(s.category(class, category))
	ct.legacy = false
	b.Categories[category] = ct
	s.forest[class] = b
	s.version++
}

// updateNode locates the node chain along path by id at each level, applies fn to the
// last node and rebuilds the chain bottom-up.
func (s *Store) updateNode(class, category string, path []string, fn func(Node) Node) bool {
	root := s.category(class, category).Items

	// locate
	levels := make([][]Node, len(path))
	idxs := make([]int, len(path))
	level := root
	for d, id := range path {
		i := indexOf(level, id)
		if i < 0 {
			return false
		}
		levels[d], idxs[d] = level, i
		level = level[i].Children
	}

	// rebuild
	updated := fn(levels[len(path)-1][idxs[len(path)-1]])
	var out []Node
	for d := len(path) - 1; d >= 0; d-- {
		out = make([]Node, len(levels[d]))
		copy(out, levels[d])
		out[idxs[d]] = updated
		if d > 0 {
			updated = levels[d-1][idxs[d-1]]
			updated.Children = out
		}
	}

	s.writeCategory(class, category, func(ct CategoryTree) CategoryTree {
		ct.Items = out
		return ct
	})
	return true
}

func indexOf(nodes []Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}
