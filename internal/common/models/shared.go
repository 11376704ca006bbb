package models

import "time"

// Log is the persisted shape of a log entry written by the async DB writer.
type Log struct {
	AppId        string    `bson:"app_id" json:"app_id"`
	Message      string    `bson:"message" json:"message"`
	GroupID      string    `bson:"group_id,omitempty" json:"group_id,omitempty"`
	PersonID     string    `bson:"person_id,omitempty" json:"person_id,omitempty"`
	Caller       string    `bson:"caller" json:"caller"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
