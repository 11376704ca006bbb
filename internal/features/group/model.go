package group

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a node in the organizational tree. Tree shape is kept purely as
// id relationships: children holds direct child ids, ancestors the chain of
// group ids from the root down to the immediate parent, and hierarchy the
// name-resolved form of ancestors plus the group's own name.
//
// members holds the ids of persons whose direct group is this group; admins
// is always a subset of members. Both are maintained in lock-step with the
// person records and never edited independently.
type Group struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name      string               `json:"name" bson:"name" validate:"notblank"`
	Type      string               `json:"type,omitempty" bson:"type,omitempty"`
	Admins    []string             `json:"admins" bson:"admins"`
	Members   []string             `json:"members" bson:"members"`
	Children  []primitive.ObjectID `json:"children" bson:"children"`
	Ancestors []primitive.ObjectID `json:"ancestors" bson:"ancestors"`
	Hierarchy []string             `json:"hierarchy" bson:"hierarchy"`
	Clearance int                  `json:"clearance" bson:"clearance" validate:"gte=0"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// HasChild reports whether id is already a direct child.
func (g *Group) HasChild(id primitive.ObjectID) bool {
	for _, c := range g.Children {
		if c == id {
			return true
		}
	}
	return false
}

// HasAncestor reports whether id appears in the ancestor chain.
func (g *Group) HasAncestor(id primitive.ObjectID) bool {
	for _, a := range g.Ancestors {
		if a == id {
			return true
		}
	}
	return false
}

// HasMember reports whether the person id is a direct member.
func (g *Group) HasMember(personID string) bool {
	for _, m := range g.Members {
		if m == personID {
			return true
		}
	}
	return false
}

// HasAdmin reports whether the person id is an admin.
func (g *Group) HasAdmin(personID string) bool {
	for _, a := range g.Admins {
		if a == personID {
			return true
		}
	}
	return false
}
