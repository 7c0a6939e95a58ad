package models

import "time"

// Worker is the roster projection of a field worker. The roster itself is
// owned by the identity collaborator; bookings reference workers by id.
type Worker struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Skills    []string  `bson:"skills,omitempty" json:"skills,omitempty"`
	Available bool      `bson:"available" json:"available"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasSkill reports whether the worker carries the given skill tag. Workers
// with no tags are treated as generalists.
func (w *Worker) HasSkill(tag string) bool {
	if tag == "" || len(w.Skills) == 0 {
		return true
	}
	for _, s := range w.Skills {
		if s == tag {
			return true
		}
	}
	return false
}
