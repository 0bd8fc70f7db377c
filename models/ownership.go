package models

// Owned is implemented by records that a single author may mutate.
type Owned interface {
	OwnerID() uint
}

// CanMutate reports whether actor may edit or delete entity. A nil actor is anonymous.
func CanMutate(actor *User, entity Owned) bool {
	if actor == nil || actor.ID == 0 || entity == nil {
		return false
	}
	return actor.ID == entity.OwnerID()
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Location{},
		&Post{},
		&Comment{},
	}
}
