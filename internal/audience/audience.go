// Package audience decides which viewers may see a post based on its declared
// audience and the viewer's relationship edges to the author.
package audience

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Audience is the declared visibility scope of a post.
type Audience string

const (
	Followers    Audience = "followers"
	CloseFriends Audience = "closeFriends"
)

// Normalize cleans a stored or submitted audience value. Quote characters are
// stripped and case is folded; an empty value means Followers. Unknown values
// are returned cleaned but otherwise untouched so IsVisible can reject them.
func Normalize(raw string) Audience {
	cleaned := strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(raw))
	switch strings.ToLower(cleaned) {
	case "", "followers":
		return Followers
	case "closefriends":
		return CloseFriends
	default:
		return Audience(strings.ToLower(cleaned))
	}
}

// Parse is the strict form of Normalize used for user input.
func Parse(raw string) (Audience, error) {
	a := Normalize(raw)
	if !a.Valid() {
		return "", fmt.Errorf("unknown audience %q", raw)
	}
	return a, nil
}

// Valid reports whether a is one of the recognized audiences.
func (a Audience) Valid() bool {
	return a == Followers || a == CloseFriends
}

// Scan normalizes values read from the database.
func (a *Audience) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*a = Followers
	case string:
		*a = Normalize(v)
	case []byte:
		*a = Normalize(string(v))
	default:
		return fmt.Errorf("audience: cannot scan %T", value)
	}
	return nil
}

// Value writes the canonical form.
func (a Audience) Value() (driver.Value, error) {
	return string(Normalize(string(a))), nil
}
