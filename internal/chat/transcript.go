package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// MaxMessageLength bounds a single user message.
const MaxMessageLength = 500

// MaxExchanges is how many question and reply pairs a transcript keeps.
const MaxExchanges = 50

// Message is one entry of a transcript.
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// IsUser reports whether the message was written by the visitor.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Transcript is a conversation log holding the last MaxExchanges exchanges.
type Transcript []Message

// Exchange appends the user's text and the bot's reply, returning the reply.
// The oldest exchanges are dropped once the log is full. Blank input leaves
// the transcript untouched and returns "".
func (t *Transcript) Exchange(text string, now time.Time) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		text = string([]rune(text)[:MaxMessageLength])
	}
	reply := Reply(text)
	*t = append(*t,
		Message{Role: RoleUser, Content: text, At: now},
		Message{Role: RoleBot, Content: reply, At: now},
	)
	if over := len(*t) - 2*MaxExchanges; over > 0 {
		*t = append(Transcript(nil), (*t)[over:]...)
	}
	return reply
}
