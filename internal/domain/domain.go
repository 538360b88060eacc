package domain

import (
	"github.com/yungbote/collections-backend/internal/domain/companies"
	"github.com/yungbote/collections-backend/internal/domain/tasks"
)

type Company = companies.Company
type Collection = companies.Collection
type Membership = companies.Membership

type TaskStatus = tasks.Status
type TaskProgress = tasks.Progress
type ProgressEvent = tasks.Event

const (
	TaskStatusInProgress = tasks.StatusInProgress
	TaskStatusCompleted  = tasks.StatusCompleted
	TaskStatusFailed     = tasks.StatusFailed
)

// Models lists every relational model, in migration order.
func Models() []any {
	return []any{
		&companies.Company{},
		&companies.Collection{},
		&companies.Membership{},
	}
}
