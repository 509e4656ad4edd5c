package audience

// Graph holds one viewer's relationship edges.
type Graph struct {
	Following    []uint `json:"following"`
	CloseOf      []uint `json:"close_of"`
	MarkedClose  []uint `json:"marked_close"`
	following    map[uint]struct{}
	closeOf      map[uint]struct{}
	markedClose  map[uint]struct{}
	materialized bool
}

// NewGraph builds a viewer graph. following are authors the viewer follows,
// closeOf are authors who marked the viewer as a close friend, markedClose are
// authors the viewer marked as close friends.
func NewGraph(following, closeOf, markedClose []uint) Graph {
	g := Graph{Following: following, CloseOf: closeOf, MarkedClose: markedClose}
	g.materialize()
	return g
}

func (g *Graph) materialize() {
	if g.materialized {
		return
	}
	g.following = toSet(g.Following)
	g.closeOf = toSet(g.CloseOf)
	g.markedClose = toSet(g.MarkedClose)
	g.materialized = true
}

// RelationTo returns the viewer's relation to author.
func (g *Graph) RelationTo(author uint) Relation {
	g.materialize()
	_, follows := g.following[author]
	_, closeBy := g.closeOf[author]
	_, marks := g.markedClose[author]
	return Relation{Follows: follows, MarkedCloseByAuthor: closeBy, MarksAuthorClose: marks}
}

// Authors returns every author that can possibly be visible to the viewer.
func (g *Graph) Authors() []uint {
	g.materialize()
	seen := make(map[uint]struct{}, len(g.following)+len(g.closeOf))
	out := make([]uint, 0, len(g.following)+len(g.closeOf))
	for _, ids := range [][]uint{g.Following, g.CloseOf} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// CanView reports whether viewer may open s directly. Authors always see
// their own posts.
func (p Policy) CanView(viewer uint, s Subject, g *Graph) bool {
	if viewer != 0 && viewer == s.AuthorID {
		return true
	}
	return p.IsVisible(s, g.RelationTo(s.AuthorID))
}

// Filter keeps the items a viewer may see in their feed, preserving order.
// Items authored by the viewer are always dropped.
func Filter[T any](p Policy, viewer uint, items []T, subjectOf func(T) Subject, g *Graph) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		s := subjectOf(item)
		if s.AuthorID == viewer {
			continue
		}
		if p.IsVisible(s, g.RelationTo(s.AuthorID)) {
			out = append(out, item)
		}
	}
	return out
}

func toSet(ids []uint) map[uint]struct{} {
	m := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
