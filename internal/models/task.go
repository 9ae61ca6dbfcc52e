package models

import "time"

type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses lists the statuses in display order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "H"
	PriorityMedium TaskPriority = "M"
	PriorityLow    TaskPriority = "L"
)

var TaskPriorities = []TaskPriority{PriorityHigh, PriorityMedium, PriorityLow}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (p TaskPriority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return string(p)
}

const DefaultTaskAsset = "tasks_asset/default_img.jpg"

// Task has no soft delete: removing a task removes its detail and assignments.
type Task struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProjectID uint `gorm:"not null;index"`
	Project   Project

	Title       string     `gorm:"size:250;not null"`
	Description string     `gorm:"type:text"`
	DueDate     time.Time  `gorm:"type:date;not null"`
	Status      TaskStatus `gorm:"type:varchar(15);not null;default:PENDING;check:chk_tasks_status,status IN ('PENDING','IN_PROGRESS','COMPLETED')"`

	AssignedTo []User      `gorm:"many2many:task_assignees;"`
	Detail     *TaskDetail `gorm:"constraint:OnDelete:CASCADE;"`
}

type TaskDetail struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	TaskID uint `gorm:"uniqueIndex;not null"`

	Asset    string       `gorm:"size:255"`
	Priority TaskPriority `gorm:"type:varchar(1);not null;default:L"`
	Notes    string       `gorm:"type:text"`
}
