package internal

import (
	"time"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// CreateTestTranscript creates a transcript with a question, an answer
// carrying a result set, and a statement awaiting confirmation.
func CreateTestTranscript(id string) *SessionTranscript {
	return &SessionTranscript{
		Session: ChatSession{ID: id, Name: "Top students", CreatedAt: testTime},
		Messages: []Message{
			{
				Role:      RoleUser,
				Content:   "Show the top students",
				Timestamp: testTime,
			},
			{
				Role:    RoleAssistant,
				Content: "Here is the result:",
				SQL:     "SELECT name, marks FROM students ORDER BY marks DESC",
				Datasets: []Dataset{
					CreateTestDataset("SELECT name, marks FROM students ORDER BY marks DESC"),
				},
				Timestamp: testTime.Add(time.Second),
			},
		},
	}
}

// CreateTestTranscriptWithMessages creates a transcript with custom messages
func CreateTestTranscriptWithMessages(id string, messages []Message) *SessionTranscript {
	return &SessionTranscript{
		Session:  ChatSession{ID: id, Name: DefaultSessionName, CreatedAt: testTime},
		Messages: messages,
	}
}

// CreateTestDataset creates a two-row table result
func CreateTestDataset(sql string) Dataset {
	return Dataset{
		Type: DatasetTable,
		SQL:  sql,
		Data: []Row{
			NewRow("name", "Alice", "marks", 91),
			NewRow("name", "Bob", "marks", 78),
		},
	}
}
