package messaging

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/sudo-init-do/lotengo/internal/alerts"
	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

// Service reads and appends to the chats opened by offer acceptance.
type Service struct {
	store  *db.Store
	ledger *alerts.Ledger
}

func NewService(store *db.Store, ledger *alerts.Ledger) *Service {
	return &Service{store: store, ledger: ledger}
}

// Content is the payload of a message. Text messages use Text; image and
// file messages reference the binary through URI.
type Content struct {
	Text     string `json:"text"`
	URI      string `json:"uri"`
	FileName string `json:"fileName"`
}

// Thread is a chat with its most recent message, if any.
type Thread struct {
	db.Chat
	LastMessage *db.Message `json:"lastMessage,omitempty"`
}

func (t Thread) activity() time.Time {
	if t.LastMessage != nil {
		return t.LastMessage.CreatedAt
	}
	return t.CreatedAt
}

func (s *Service) GetChatByRequest(requestID string) (db.Chat, error) {
	var (
		chat  db.Chat
		found bool
	)
	s.store.View(func(d *db.Database) {
		if i := slices.IndexFunc(d.Chats, func(c db.Chat) bool { return c.RequestID == requestID }); i >= 0 {
			chat, found = d.Chats[i], true
		}
	})
	if !found {
		return db.Chat{}, apperr.NotFoundf("chat", requestID, "no chat for this request")
	}
	return chat, nil
}

func (s *Service) GetChatByID(chatID string) (db.Chat, error) {
	var (
		chat  db.Chat
		found bool
	)
	s.store.View(func(d *db.Database) {
		if c := d.FindChat(chatID); c != nil {
			chat, found = *c, true
		}
	})
	if !found {
		return db.Chat{}, apperr.NotFound("chat", chatID)
	}
	return chat, nil
}

// Inbox returns userID's chats, most recently active first. Activity is the
// last message time, or the chat creation time for an empty chat.
func (s *Service) Inbox(userID string) []Thread {
	threads := []Thread{}
	s.store.View(func(d *db.Database) {
		last := make(map[string]db.Message, len(d.Chats))
		for _, m := range d.Messages {
			if cur, ok := last[m.ChatID]; !ok || m.CreatedAt.After(cur.CreatedAt) {
				last[m.ChatID] = m
			}
		}
		for _, c := range d.Chats {
			if !c.Participant(userID) {
				continue
			}
			t := Thread{Chat: c}
			if m, ok := last[c.ID]; ok {
				t.LastMessage = &m
			}
			threads = append(threads, t)
		}
	})
	slices.SortStableFunc(threads, func(a, b Thread) int {
		return b.activity().Compare(a.activity())
	})
	return threads
}

// GetChatsByUser is Inbox without the last messages.
func (s *Service) GetChatsByUser(userID string) []db.Chat {
	threads := s.Inbox(userID)
	chats := make([]db.Chat, len(threads))
	for i, t := range threads {
		chats[i] = t.Chat
	}
	return chats
}

// GetMessages returns the chat's messages, oldest first.
func (s *Service) GetMessages(chatID string) []db.Message {
	out := []db.Message{}
	s.store.View(func(d *db.Database) {
		for _, m := range d.Messages {
			if m.ChatID == chatID {
				out = append(out, m)
			}
		}
	})
	slices.SortStableFunc(out, func(a, b db.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func (s *Service) GetLastMessage(chatID string) (db.Message, bool) {
	msgs := s.GetMessages(chatID)
	if len(msgs) == 0 {
		return db.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// SendMessage appends a message from one participant and notifies the other.
func (s *Service) SendMessage(ctx context.Context, chatID, senderID string, typ db.MessageType, content Content) (db.Message, error) {
	var notifyBody string
	switch typ {
	case db.MessageText:
		content.Text = strings.TrimSpace(content.Text)
		if content.Text == "" {
			return db.Message{}, apperr.InvalidInput("text is required")
		}
		notifyBody = content.Text
		content.URI, content.FileName = "", ""
	case db.MessageImage, db.MessageFile:
		if strings.TrimSpace(content.URI) == "" {
			return db.Message{}, apperr.InvalidInput("uri is required for %s messages", typ)
		}
		notifyBody = "Imagen adjunta"
		if typ == db.MessageFile {
			notifyBody = "Archivo adjunto"
		}
		content.Text = ""
	default:
		return db.Message{}, apperr.InvalidInput("unknown message type %q", typ)
	}

	var (
		msg   db.Message
		notes []db.Notification
	)
	err := s.store.Update(ctx, func(d *db.Database) error {
		chat := d.FindChat(chatID)
		if chat == nil {
			return apperr.NotFound("chat", chatID)
		}
		if !chat.Participant(senderID) {
			return apperr.Forbidden("not a participant in this chat")
		}
		msg = db.Message{
			ID:        d.NextID(db.TableMessages),
			ChatID:    chat.ID,
			SenderID:  senderID,
			Type:      typ,
			Text:      content.Text,
			URI:       content.URI,
			FileName:  content.FileName,
			CreatedAt: s.store.Now(),
		}
		d.Messages = append(d.Messages, msg)

		notes = append(notes, s.ledger.Record(d, chat.Counterpart(senderID), db.NotifyNewMessage,
			"Nuevo mensaje", notifyBody,
			map[string]string{"chatId": chat.ID, "requestId": chat.RequestID},
		))
		return nil
	})
	if err != nil {
		return db.Message{}, err
	}
	s.ledger.Dispatch(ctx, notes)
	return msg, nil
}
