package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultSessionName is given to fresh chats until the first prompt renames them
const DefaultSessionName = "New Chat"

const autoNameLength = 30

// SessionTranscript is a chat session with its messages, the unit of export
type SessionTranscript struct {
	Session  ChatSession `json:"session" yaml:"session"`
	Messages []Message   `json:"messages" yaml:"messages"`
}

// Sessions manages chat sessions and their messages
type Sessions struct {
	store *Store
	now   func() time.Time
}

// NewSessions creates a session manager on store
func NewSessions(store *Store) *Sessions {
	return &Sessions{store: store, now: time.Now}
}

// List returns sessions, newest first
func (s *Sessions) List() ([]ChatSession, error) {
	return loadList[ChatSession](s.store, KeyChatSessions)
}

func (s *Sessions) save(list []ChatSession) error {
	return s.store.SetJSON(KeyChatSessions, list)
}

// New creates a session, prepends it and makes it current
func (s *Sessions) New() (*ChatSession, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	session := ChatSession{
		ID:        uuid.NewString(),
		Name:      DefaultSessionName,
		CreatedAt: s.now(),
	}
	list = append([]ChatSession{session}, list...)
	if err := s.save(list); err != nil {
		return nil, err
	}
	if err := s.store.Set(KeyCurrentSession, session.ID); err != nil {
		return nil, err
	}
	LogInfo("Created chat session %s", session.ID)
	return &session, nil
}

// Current returns the active session. A first session is created on demand,
// and a stale current id falls back to the newest session.
func (s *Sessions) Current() (*ChatSession, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return s.New()
	}

	currentID := s.store.GetString(KeyCurrentSession, "")
	for i := range list {
		if list[i].ID == currentID {
			return &list[i], nil
		}
	}

	if err := s.store.Set(KeyCurrentSession, list[0].ID); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Find resolves a full id or a unique id prefix
func (s *Sessions) Find(idOrPrefix string) (*ChatSession, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, fmt.Errorf("session id is required")
	}
	list, err := s.List()
	if err != nil {
		return nil, err
	}

	var match *ChatSession
	for i := range list {
		if list[i].ID == idOrPrefix {
			return &list[i], nil
		}
		if strings.HasPrefix(list[i].ID, idOrPrefix) {
			if match != nil {
				return nil, fmt.Errorf("session id %q is ambiguous", idOrPrefix)
			}
			match = &list[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("session %q: %w", idOrPrefix, ErrNotFound)
	}
	return match, nil
}

// Select makes a session current
func (s *Sessions) Select(idOrPrefix string) (*ChatSession, error) {
	session, err := s.Find(idOrPrefix)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(KeyCurrentSession, session.ID); err != nil {
		return nil, err
	}
	return session, nil
}

// Rename changes a session's display name
func (s *Sessions) Rename(idOrPrefix, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	target, err := s.Find(idOrPrefix)
	if err != nil {
		return err
	}
	list, err := s.List()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == target.ID {
			list[i].Name = name
		}
	}
	return s.save(list)
}

// Delete removes a session and its messages and returns the session that is
// current afterwards. Deleting the last session leaves a fresh one behind.
func (s *Sessions) Delete(idOrPrefix string) (*ChatSession, error) {
	target, err := s.Find(idOrPrefix)
	if err != nil {
		return nil, err
	}
	list, err := s.List()
	if err != nil {
		return nil, err
	}

	remaining := make([]ChatSession, 0, len(list))
	for _, session := range list {
		if session.ID != target.ID {
			remaining = append(remaining, session)
		}
	}

	if err := s.store.Delete(messagesKey(target.ID)); err != nil {
		return nil, err
	}
	if err := s.save(remaining); err != nil {
		return nil, err
	}

	if len(remaining) == 0 {
		return s.New()
	}

	currentID := s.store.GetString(KeyCurrentSession, "")
	if currentID == target.ID {
		if err := s.store.Set(KeyCurrentSession, remaining[0].ID); err != nil {
			return nil, err
		}
		return &remaining[0], nil
	}
	return s.Current()
}

// Messages returns the messages of a session
func (s *Sessions) Messages(id string) ([]Message, error) {
	return loadList[Message](s.store, messagesKey(id))
}

// SaveMessages replaces the messages of a session
func (s *Sessions) SaveMessages(id string, messages []Message) error {
	return s.store.SetJSON(messagesKey(id), messages)
}

// AppendMessages adds messages to a session, stamping missing timestamps
func (s *Sessions) AppendMessages(id string, messages ...Message) error {
	existing, err := s.Messages(id)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if m.Timestamp.IsZero() {
			m.Timestamp = s.now()
		}
		existing = append(existing, m)
	}
	return s.SaveMessages(id, existing)
}

// UpdateMessage applies fn to the message at index idx
func (s *Sessions) UpdateMessage(id string, idx int, fn func(*Message)) error {
	messages, err := s.Messages(id)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(messages) {
		return fmt.Errorf("message %d: %w", idx, ErrNotFound)
	}
	fn(&messages[idx])
	return s.SaveMessages(id, messages)
}

// AutoName renames a session still called "New Chat" after its first prompt
func (s *Sessions) AutoName(id, prompt string) error {
	list, err := s.List()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id && list[i].Name == DefaultSessionName {
			list[i].Name = SmartName(prompt)
			return s.save(list)
		}
	}
	return nil
}

// Transcript loads a session together with its messages
func (s *Sessions) Transcript(idOrPrefix string) (*SessionTranscript, error) {
	session, err := s.Find(idOrPrefix)
	if err != nil {
		return nil, err
	}
	messages, err := s.Messages(session.ID)
	if err != nil {
		return nil, err
	}
	return &SessionTranscript{Session: *session, Messages: messages}, nil
}

// Transcripts loads every session with its messages
func (s *Sessions) Transcripts() ([]*SessionTranscript, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]*SessionTranscript, 0, len(list))
	for _, session := range list {
		messages, err := s.Messages(session.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, &SessionTranscript{Session: session, Messages: messages})
	}
	return out, nil
}

// ClearMessages drops the messages of every session, keeping the sessions
func (s *Sessions) ClearMessages() error {
	return s.store.DeletePrefix(KeyChatMessagesPfx)
}

// SmartName derives a session title from a prompt
func SmartName(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if utf8.RuneCountInString(prompt) <= autoNameLength {
		return prompt
	}
	runes := []rune(prompt)
	return string(runes[:autoNameLength]) + "..."
}

func messagesKey(sessionID string) string {
	return KeyChatMessagesPfx + sessionID
}
