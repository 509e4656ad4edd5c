package audience

// Relation is the viewer's standing with one author.
type Relation struct {
	// Follows is set when the viewer has a following edge to the author.
	Follows bool
	// MarkedCloseByAuthor is set when the author put the viewer on their
	// close-friends list.
	MarkedCloseByAuthor bool
	// MarksAuthorClose is set when the viewer put the author on the viewer's
	// own close-friends list.
	MarksAuthorClose bool
}

// Subject is the part of a post the visibility rules look at.
type Subject struct {
	AuthorID uint
	Audience Audience
}

// Policy toggles the precedence of the close-friend override.
type Policy struct {
	CloseFriendOverride bool
}

// DefaultPolicy lets an author's close friends see every post.
var DefaultPolicy = Policy{CloseFriendOverride: true}

// IsVisible applies the default policy.
func IsVisible(s Subject, r Relation) bool {
	return DefaultPolicy.IsVisible(s, r)
}

// IsVisible reports whether a viewer with relation r may see s. Unrecognized
// audiences are never visible.
func (p Policy) IsVisible(s Subject, r Relation) bool {
	a := Normalize(string(s.Audience))
	if !a.Valid() {
		return false
	}
	if p.CloseFriendOverride && r.MarkedCloseByAuthor {
		return true
	}
	switch a {
	case Followers:
		return r.Follows
	case CloseFriends:
		if !p.CloseFriendOverride {
			return r.MarkedCloseByAuthor
		}
		// The viewer's own close-friend mark only counts where followers are
		// admitted too, which a closeFriends post never does.
		return r.MarksAuthorClose && permitsFollowers(a)
	}
	return false
}

func permitsFollowers(a Audience) bool {
	return a == Followers
}
