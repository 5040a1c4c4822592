// Package habit implements the habit checklist operations.
//
// Every operation takes the current list and returns a new one. Callers
// load the list from the session, apply one operation and write the whole
// list back. There is no version check between the load and the save, so
// two concurrent requests from the same client race and the last write
// wins.
package habit

import (
	"errors"
	"strings"

	"github.com/thebtf/webtools/internal/textutil"
	"github.com/thebtf/webtools/pkg/models"
)

// ErrEmptyName is returned by Add when the trimmed name is empty.
var ErrEmptyName = errors.New("empty name")

// NextID returns one more than the largest id in list, or 1 for an empty list.
// Ids of deleted habits may be handed out again once they are the maximum.
func NextID(list []models.Habit) int {
	maxID := 0
	for _, h := range list {
		if h.ID > maxID {
			maxID = h.ID
		}
	}
	return maxID + 1
}

// Add appends a new, not yet done habit named name.
// The input list is returned unchanged together with ErrEmptyName when the
// trimmed name is empty.
func Add(list []models.Habit, name string) ([]models.Habit, models.Habit, error) {
	name = strings.TrimFunc(name, textutil.IsSpace)
	if name == "" {
		return clone(list), models.Habit{}, ErrEmptyName
	}

	h := models.Habit{ID: NextID(list), Name: name}
	result := make([]models.Habit, 0, len(list)+1)
	result = append(result, list...)
	result = append(result, h)
	return result, h, nil
}

// Toggle flips Done on the first habit with the given id. Unknown ids are ignored.
func Toggle(list []models.Habit, id int) []models.Habit {
	result := clone(list)
	for i := range result {
		if result[i].ID == id {
			result[i].Done = !result[i].Done
			break
		}
	}
	return result
}

// Delete removes the habit with the given id. Unknown ids are ignored.
func Delete(list []models.Habit, id int) []models.Habit {
	result := make([]models.Habit, 0, len(list))
	for _, h := range list {
		if h.ID != id {
			result = append(result, h)
		}
	}
	return result
}

// clone returns a non-nil copy of list.
func clone(list []models.Habit) []models.Habit {
	result := make([]models.Habit, len(list))
	copy(result, list)
	return result
}
