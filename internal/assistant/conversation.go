package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/google/uuid"
)

// MaxMessages bounds the transcript kept by a Conversation.
const MaxMessages = 20

// Greeting opens every conversation.
const Greeting = "Hello! I'm your Personal CFO at Wealthifyre. I can help you manage your finances, invest wisely, and plan for your financial future. How can I assist you today?"

// Suggestions are starter questions shown before the first message.
var Suggestions = []string{
	"Summarize my spending last month",
	"How is my investment portfolio doing?",
	"Generate a report of all expenses in Q3",
	"What are my biggest expense categories?",
}

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Action is a button attached to an assistant message.
type Action struct {
	Label  string        `json:"label"`
	Intent intent.Intent `json:"intent"`
}

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Actions   []Action  `json:"actions,omitempty"`
}

// Conversation is a bounded chat transcript backed by an Assistant.
type Conversation struct {
	assistant *Assistant

	mu       sync.Mutex
	messages []Message
	backup   bool
}

// NewConversation starts a transcript with the greeting.
func NewConversation(a *Assistant) *Conversation {
	return &Conversation{
		assistant: a,
		messages: []Message{{
			ID:        uuid.NewString(),
			Text:      Greeting,
			Sender:    SenderAssistant,
			Timestamp: time.Now(),
		}},
	}
}

// Send records the user message, asks the assistant and records the reply.
func (c *Conversation) Send(ctx context.Context, text string) (Message, Reply, error) {
	reply, err := c.assistant.Ask(ctx, text)
	if err != nil {
		return Message{}, Reply{}, err
	}

	msg := Message{
		ID:        uuid.NewString(),
		Text:      reply.Text,
		Sender:    SenderAssistant,
		Timestamp: time.Now(),
	}
	if reply.Intent != nil {
		msg.Actions = []Action{{Label: intent.Label(*reply.Intent), Intent: *reply.Intent}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.backup = reply.Backup
	c.append(Message{ID: uuid.NewString(), Text: text, Sender: SenderUser, Timestamp: time.Now()})
	c.append(msg)
	return msg, reply, nil
}

// Messages returns a copy of the transcript, oldest first.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// BackupMode reports whether the last reply came from the local fallback.
func (c *Conversation) BackupMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backup
}

func (c *Conversation) append(m Message) {
	c.messages = append(c.messages, m)
	if over := len(c.messages) - MaxMessages; over > 0 {
		c.messages = append([]Message(nil), c.messages[over:]...)
	}
}
