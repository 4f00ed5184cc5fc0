package internal

import (
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Confirmation states for messages carrying SQL that awaits approval
const (
	ConfirmationConfirmed = "confirmed"
	ConfirmationCancelled = "cancelled"
)

// Dataset types returned by the backend. Chart types are rendering hints.
const (
	DatasetTable   = "table"
	DatasetMessage = "message"
	DatasetError   = "error"
)

// History entry status
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ChatSession is one conversation thread in the chat view
type ChatSession struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Message is one chat bubble
type Message struct {
	Role                 string    `json:"role" yaml:"role"`
	Content              string    `json:"content" yaml:"content"`
	SQL                  string    `json:"sql,omitempty" yaml:"sql,omitempty"`
	Datasets             []Dataset `json:"datasets,omitempty" yaml:"datasets,omitempty"`
	RequiresConfirmation bool      `json:"requires_confirmation,omitempty" yaml:"requires_confirmation,omitempty"`
	Confirmation         string    `json:"confirmation,omitempty" yaml:"confirmation,omitempty"`
	Timestamp            time.Time `json:"timestamp" yaml:"timestamp"`
}

// AwaitingConfirmation reports whether the message still needs a confirm/cancel decision
func (m Message) AwaitingConfirmation() bool {
	return m.RequiresConfirmation && m.Confirmation == "" && m.SQL != ""
}

// Dataset is a result set paired with the SQL that produced it and a rendering hint
type Dataset struct {
	Type string `json:"type" yaml:"type"`
	Data []Row  `json:"data" yaml:"data"`
	SQL  string `json:"sql,omitempty" yaml:"sql,omitempty"`
}

// ErrorText returns the backend error for an "error" dataset
func (d Dataset) ErrorText() string {
	if d.Type != DatasetError || len(d.Data) == 0 {
		return ""
	}
	if v, ok := d.Data[0].Get("error"); ok {
		return stringify(v)
	}
	return "Unknown Error"
}

// Summary returns the status line of a "message" dataset and its affected row count
func (d Dataset) Summary() (string, string) {
	msg := "Operation completed"
	if len(d.Data) == 0 {
		return msg, ""
	}
	if v, ok := d.Data[0].Get("message"); ok {
		msg = stringify(v)
	}
	rows := ""
	if v, ok := d.Data[0].Get("rows_affected"); ok && v != nil {
		rows = stringify(v)
	}
	return msg, rows
}

// HistoryEntry is one executed statement in the query log
type HistoryEntry struct {
	ID        string    `json:"id"`
	SQL       string    `json:"sql"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

// ChartConfig selects the axes a chart is drawn with
type ChartConfig struct {
	XAxis    string `json:"xAxis" yaml:"x_axis"`
	YAxis    string `json:"yAxis" yaml:"y_axis"`
	LabelKey string `json:"labelKey" yaml:"label_key"`
}

// Widget is a pinned query shown on the dashboard
type Widget struct {
	ID            string      `json:"id"`
	SQL           string      `json:"sql"`
	ChartType     string      `json:"chartType"`
	ChartConfig   ChartConfig `json:"chartConfig"`
	ConnectionURI string      `json:"connectionUri,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
	Data          []Row       `json:"data,omitempty"`
	LastUpdated   *time.Time  `json:"lastUpdated,omitempty"`
}

// SavedQuery is a bookmarked statement
type SavedQuery struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SQL       string    `json:"sql"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInfo is the profile returned at login
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
