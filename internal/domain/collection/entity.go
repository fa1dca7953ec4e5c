package collection

// Entity is any record addressed by a backend-assigned integer key.
type Entity interface {
	GetID() int
}

// Identity constrains the pointer form of a record type so repositories can
// build default values and key-only shells of it.
type Identity[T any] interface {
	*T
	Entity
	SetID(id int)
}

type Base struct {
	ID int `gorm:"primaryKey" json:"id"`
}

func (b Base) GetID() int {
	return b.ID
}

func (b *Base) SetID(id int) {
	b.ID = id
}

// IsAbsent reports whether item is the absent sentinel or a default value that
// never received a key.
func IsAbsent[T any, PT Identity[T]](item *T) bool {
	if item == nil {
		return true
	}
	return PT(item).GetID() == 0
}
