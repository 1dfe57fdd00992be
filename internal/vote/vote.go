// Package vote holds one user's vote on one post and keeps the like/dislike
// tally in step with it.
package vote

import (
	"threadline/internal/apperr"
	"threadline/internal/models"
)

// Value is a vote direction.
type Value int8

const (
	Down Value = -1
	None Value = 0
	Up   Value = 1
)

func (v Value) valid() bool {
	return v == Down || v == None || v == Up
}

// CheckRequest rejects anything but a like or a dislike.
func CheckRequest(requested Value) error {
	if requested != Up && requested != Down {
		return apperr.Validation("vote must be 1 or -1, got %d", requested)
	}
	return nil
}

// Apply returns the vote that follows current when the user presses
// requested. Pressing the active direction again clears the vote, pressing
// the other direction switches to it in one step.
func Apply(current, requested Value) (Value, error) {
	if err := CheckRequest(requested); err != nil {
		return None, err
	}
	if !current.valid() {
		return None, apperr.Validation("invalid current vote %d", current)
	}
	if requested == current {
		return None, nil
	}
	return requested, nil
}

// Tally counts the likes and dislikes of a post.
type Tally struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Shift moves one vote from `from` to `to`: the vacated counter goes down,
// the entered counter goes up.
func (t *Tally) Shift(from, to Value) {
	if from == to {
		return
	}
	switch from {
	case Up:
		t.Likes--
	case Down:
		t.Dislikes--
	}
	switch to {
	case Up:
		t.Likes++
	case Down:
		t.Dislikes++
	}
}

// TallyFrom counts records and picks out userID's current vote. A zero
// userID matches nobody.
func TallyFrom(records []models.Vote, userID uint) (Tally, Value) {
	var t Tally
	mine := None
	for _, r := range records {
		switch Value(r.Value) {
		case Up:
			t.Likes++
		case Down:
			t.Dislikes++
		}
		if userID != 0 && r.UserID == userID {
			mine = Value(r.Value)
		}
	}
	return t, mine
}

// State is what a client renders for a post's vote controls.
type State struct {
	Vote  Value `json:"vote"`
	Tally Tally `json:"tally"`
}
