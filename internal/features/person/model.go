package person

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultRank = "Newbie"

// Person is an individual assignable to at most one group at a time. The
// id is externally supplied (exactly 7 digits), not a store-generated key.
// directGroup is a weak reference: a plain group id resolved through the
// store on demand, never an in-memory alias of the group record.
//
// Discharge never hard-deletes: a discharged person (alive=false) drops out
// of default listings but stays addressable by id until explicit removal.
type Person struct {
	ID                string              `json:"id" bson:"_id" validate:"personid"`
	FirstName         string              `json:"firstName" bson:"firstName" validate:"notblank"`
	LastName          string              `json:"lastName" bson:"lastName" validate:"notblank"`
	Job               string              `json:"job,omitempty" bson:"job,omitempty"`
	Mail              string              `json:"mail,omitempty" bson:"mail,omitempty" validate:"omitempty,email"`
	Phone             string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Rank              string              `json:"rank" bson:"rank"`
	Address           string              `json:"address,omitempty" bson:"address,omitempty"`
	IsSecurityOfficer bool                `json:"isSecurityOfficer" bson:"isSecurityOfficer"`
	Clearance         int                 `json:"clearance" bson:"clearance" validate:"gte=0"`
	DirectGroup       *primitive.ObjectID `json:"directGroup,omitempty" bson:"directGroup,omitempty"`
	Alive             bool                `json:"alive" bson:"alive"`
	CreatedAt         time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// RemoveResult mirrors the store's delete acknowledgement. Removing an
// absent person is not an error: both counts are zero.
type RemoveResult struct {
	Matched int64 `json:"matched"`
	Deleted int64 `json:"deleted"`
}

// DischargeResult reports how many records the discharge touched.
type DischargeResult struct {
	Matched int64 `json:"matched"`
}
