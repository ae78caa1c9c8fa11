package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusIsValid(t *testing.T) {
	for _, status := range []TaskStatus{StatusToDo, StatusInProgress, StatusDone, StatusArchived} {
		assert.True(t, status.IsValid(), "expected %q to be valid", status)
	}

	assert.False(t, TaskStatus("").IsValid())
	assert.False(t, TaskStatus("Pending").IsValid())
	assert.False(t, TaskStatus("to do").IsValid(), "status values are case-sensitive")
}

func TestTaskPriorityIsValid(t *testing.T) {
	for _, priority := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh} {
		assert.True(t, priority.IsValid(), "expected %q to be valid", priority)
	}

	assert.False(t, TaskPriority("").IsValid())
	assert.False(t, TaskPriority("Urgent").IsValid())
}
