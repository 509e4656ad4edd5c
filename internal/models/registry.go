package models

// All returns every model managed by migrations, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Post{},
		&Relationship{},
		&Vote{},
		&Comment{},
		&WishlistItem{},
		&Report{},
		&Message{},
	}
}
