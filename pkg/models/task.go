package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task represents a task in the system
type Task struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string    `json:"title" gorm:"not null"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed" gorm:"not null;default:false;index:idx_tasks_completed_due"`
	DueDate     time.Time `json:"due_date" gorm:"not null;index:idx_tasks_completed_due"`
	Priority    Priority  `json:"priority" gorm:"not null;type:varchar(10);default:low"`
	ListID      uuid.UUID `json:"list_id" gorm:"not null;type:uuid;index:idx_tasks_list"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Foreign Key Relations
	List *List `json:"list,omitempty" gorm:"foreignKey:ListID;constraint:OnDelete:RESTRICT"`

	// Many-to-Many Relations
	Tags []Tag `json:"tags" gorm:"many2many:task_tags"`
}

// BeforeCreate assigns an ID when the caller did not provide one.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Priority == "" {
		t.Priority = PriorityLow
	}
	return nil
}

// DueAt lets tasks be grouped by the due package.
func (t Task) DueAt() time.Time {
	return t.DueDate
}

// WithCompleted returns a copy of the task with only the completed flag changed.
func (t Task) WithCompleted(completed bool) Task {
	t.Completed = completed
	return t
}

// TagIDs returns the ids of the attached tags in order.
func (t Task) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Tags))
	for _, tag := range t.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}
