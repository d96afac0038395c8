package core

import (
	"github.com/google/uuid"
)

// Identifier tags a loaded resource (font, shader, texture) so reload
// events can be matched back to the resource they belong to.
type Identifier struct {
	ID   uuid.UUID
	Name string
}

func NewIdentifier(name string) Identifier {
	return Identifier{
		ID:   uuid.New(),
		Name: name,
	}
}

func (i Identifier) String() string {
	return i.Name + "/" + i.ID.String()
}
