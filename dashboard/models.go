package dashboard

import "time"

// JobStatus 工单状态
type JobStatus string

const (
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
	JobInvoiced   JobStatus = "invoiced"
)

// Valid 判断状态是否合法
func (s JobStatus) Valid() bool {
	switch s {
	case JobScheduled, JobInProgress, JobCompleted, JobCancelled, JobInvoiced:
		return true
	}
	return false
}

// Period 汇总统计周期
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Valid 判断周期是否合法
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// Page 分页结果
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// PageQuery 分页查询参数
type PageQuery struct {
	Page     int
	PageSize int
	Location string
}

type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Status      JobStatus `json:"status"`
	Customer    string    `json:"customer"`
	Location    string    `json:"location"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Total       float64   `json:"total"`
}

type Summary struct {
	Period              Period  `json:"period"`
	Location            string  `json:"location"`
	JobsScheduled       int     `json:"jobs_scheduled"`
	JobsCompleted       int     `json:"jobs_completed"`
	Revenue             float64 `json:"revenue"`
	OutstandingInvoices int     `json:"outstanding_invoices"`
}

type Contact struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
