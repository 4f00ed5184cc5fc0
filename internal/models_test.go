package internal

import "testing"

func TestMessage_AwaitingConfirmation(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{name: "pending", msg: Message{RequiresConfirmation: true, SQL: "DROP TABLE t"}, want: true},
		{name: "confirmed", msg: Message{RequiresConfirmation: true, SQL: "DROP TABLE t", Confirmation: ConfirmationConfirmed}},
		{name: "cancelled", msg: Message{RequiresConfirmation: true, SQL: "DROP TABLE t", Confirmation: ConfirmationCancelled}},
		{name: "no sql", msg: Message{RequiresConfirmation: true}},
		{name: "not required", msg: Message{SQL: "SELECT 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.AwaitingConfirmation(); got != tt.want {
				t.Errorf("AwaitingConfirmation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDataset_ErrorText(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		want string
	}{
		{name: "error row", ds: Dataset{Type: DatasetError, Data: []Row{NewRow("error", "boom")}}, want: "boom"},
		{name: "error without field", ds: Dataset{Type: DatasetError, Data: []Row{NewRow("x", 1)}}, want: "Unknown Error"},
		{name: "table", ds: Dataset{Type: DatasetTable, Data: []Row{NewRow("error", "boom")}}, want: ""},
		{name: "empty error", ds: Dataset{Type: DatasetError}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ds.ErrorText(); got != tt.want {
				t.Errorf("ErrorText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataset_Summary(t *testing.T) {
	tests := []struct {
		name     string
		ds       Dataset
		wantMsg  string
		wantRows string
	}{
		{
			name:     "message with count",
			ds:       Dataset{Type: DatasetMessage, Data: []Row{NewRow("message", "Inserted", "rows_affected", 2)}},
			wantMsg:  "Inserted",
			wantRows: "2",
		},
		{
			name:    "null count",
			ds:      Dataset{Type: DatasetMessage, Data: []Row{NewRow("message", "Created", "rows_affected", nil)}},
			wantMsg: "Created",
		},
		{
			name:    "empty",
			ds:      Dataset{Type: DatasetMessage},
			wantMsg: "Operation completed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, rows := tt.ds.Summary()
			if msg != tt.wantMsg || rows != tt.wantRows {
				t.Errorf("Summary() = (%q, %q), want (%q, %q)", msg, rows, tt.wantMsg, tt.wantRows)
			}
		})
	}
}
