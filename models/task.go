package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
	StatusArchived   TaskStatus = "Archived"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const (
	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 500
)

type Task struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title        string              `bson:"title" json:"title"`
	Description  string              `bson:"description" json:"description"`
	Status       TaskStatus          `bson:"status" json:"status"`
	Priority     TaskPriority        `bson:"priority" json:"priority"`
	DueDate      *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Organization primitive.ObjectID  `bson:"organization" json:"organization"`
	AssignedTo   *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedBy    primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// TaskView is the expanded form returned to clients, with assignee and
// creator resolved to user snapshots.
type TaskView struct {
	ID           primitive.ObjectID `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Status       TaskStatus         `json:"status"`
	Priority     TaskPriority       `json:"priority"`
	DueDate      *time.Time         `json:"dueDate,omitempty"`
	Organization primitive.ObjectID `json:"organization"`
	AssignedTo   *UserRef           `json:"assignedTo"`
	CreatedBy    UserRef            `json:"createdBy"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}
