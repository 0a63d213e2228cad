package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gotd/td/tg"
)

// UserInfo describes a person peer.
type UserInfo struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsBot     bool   `json:"isBot,omitempty"`
}

// ChatInfo describes a basic (small) group peer.
type ChatInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MembersCount int    `json:"membersCount,omitempty"`
}

// ChannelInfo describes a channel or supergroup peer.
type ChannelInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Username     string `json:"username,omitempty"`
	Broadcast    bool   `json:"broadcast,omitempty"`
	Megagroup    bool   `json:"megagroup,omitempty"`
	MembersCount int    `json:"membersCount,omitempty"`
}

// MessageSummary is the last-message preview attached to a dialog.
type MessageSummary struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Date string `json:"date"`
}

// Dialog is a normalized conversation summary. Exactly one of User, Chat and
// Channel is populated, matching the active kind flag.
type Dialog struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	IsUser      bool            `json:"isUser"`
	IsGroup     bool            `json:"isGroup"`
	IsChannel   bool            `json:"isChannel"`
	UnreadCount int             `json:"unreadCount"`
	User        *UserInfo       `json:"user,omitempty"`
	Chat        *ChatInfo       `json:"chat,omitempty"`
	Channel     *ChannelInfo    `json:"channel,omitempty"`
	LastMessage *MessageSummary `json:"lastMessage,omitempty"`
}

// Message is a normalized message. FromID is the sender's numeric user id as
// a string, or null when the sender reference is not a direct-person peer
// (channel posts, anonymous group admins).
type Message struct {
	ID        int     `json:"id"`
	Text      string  `json:"text"`
	Date      string  `json:"date"`
	FromID    *string `json:"fromId"`
	FromName  string  `json:"fromName,omitempty"`
	ReplyToID *int    `json:"replyToId,omitempty"`
	Views     *int    `json:"views,omitempty"`
	Forwards  *int    `json:"forwards,omitempty"`
}

// Me is the authenticated account's own identity.
type Me struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsBot     bool   `json:"isBot"`
}

// Error wraps a failure of one adapter operation.
type Error struct {
	// Op is the operation that failed (e.g., "connect", "get_dialogs")
	Op string

	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	return e.Err
}

type peerMsgKey struct {
	peer int64
	id   int
}

// peerID extracts the bare numeric id from a peer reference, ignoring kind.
func peerID(p tg.PeerClass) int64 {
	switch v := p.(type) {
	case *tg.PeerUser:
		return v.UserID
	case *tg.PeerChat:
		return v.ChatID
	case *tg.PeerChannel:
		return v.ChannelID
	}
	return 0
}

func indexUsers(users []tg.UserClass) map[int64]*tg.User {
	idx := make(map[int64]*tg.User, len(users))
	for _, uc := range users {
		if u, ok := uc.(*tg.User); ok {
			idx[u.ID] = u
		}
	}
	return idx
}

func indexChats(chats []tg.ChatClass) map[int64]tg.ChatClass {
	idx := make(map[int64]tg.ChatClass, len(chats))
	for _, cc := range chats {
		switch c := cc.(type) {
		case *tg.Chat:
			idx[c.ID] = c
		case *tg.Channel:
			idx[c.ID] = c
		}
	}
	return idx
}

func indexTopMessages(messages []tg.MessageClass) map[peerMsgKey]*tg.Message {
	idx := make(map[peerMsgKey]*tg.Message, len(messages))
	for _, mc := range messages {
		if m, ok := mc.(*tg.Message); ok {
			idx[peerMsgKey{peer: peerID(m.PeerID), id: m.ID}] = m
		}
	}
	return idx
}

func displayName(u *tg.User) string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

func formatDate(unix int) string {
	return time.Unix(int64(unix), 0).UTC().Format(time.RFC3339)
}

// buildDialog normalizes one raw dialog entry. The second return value is
// false when the peer kind is unknown or its detail record is missing from
// the response.
func buildDialog(d *tg.Dialog, users map[int64]*tg.User, chats map[int64]tg.ChatClass, top map[peerMsgKey]*tg.Message) (Dialog, bool) {
	out := Dialog{
		ID:          strconv.FormatInt(peerID(d.Peer), 10),
		UnreadCount: d.UnreadCount,
	}

	switch p := d.Peer.(type) {
	case *tg.PeerUser:
		u, ok := users[p.UserID]
		if !ok {
			return Dialog{}, false
		}
		out.IsUser = true
		out.Title = displayName(u)
		if out.Title == "" {
			out.Title = u.Username
		}
		out.User = &UserInfo{
			ID:        strconv.FormatInt(u.ID, 10),
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Username:  u.Username,
			Phone:     u.Phone,
			IsBot:     u.Bot,
		}
	case *tg.PeerChat:
		c, ok := chats[p.ChatID].(*tg.Chat)
		if !ok {
			return Dialog{}, false
		}
		out.IsGroup = true
		out.Title = c.Title
		out.Chat = &ChatInfo{
			ID:           strconv.FormatInt(c.ID, 10),
			Title:        c.Title,
			MembersCount: c.ParticipantsCount,
		}
	case *tg.PeerChannel:
		ch, ok := chats[p.ChannelID].(*tg.Channel)
		if !ok {
			return Dialog{}, false
		}
		// Megagroups behave like groups even though they ride on the
		// channel infrastructure.
		if ch.Megagroup {
			out.IsGroup = true
		} else {
			out.IsChannel = true
		}
		out.Title = ch.Title
		out.Channel = &ChannelInfo{
			ID:           strconv.FormatInt(ch.ID, 10),
			Title:        ch.Title,
			Username:     ch.Username,
			Broadcast:    ch.Broadcast,
			Megagroup:    ch.Megagroup,
			MembersCount: ch.ParticipantsCount,
		}
	default:
		return Dialog{}, false
	}

	if m, ok := top[peerMsgKey{peer: peerID(d.Peer), id: d.TopMessage}]; ok {
		out.LastMessage = &MessageSummary{
			ID:   m.ID,
			Text: m.Message,
			Date: formatDate(m.Date),
		}
	}

	return out, true
}

// buildMessage normalizes one raw message.
func buildMessage(m *tg.Message, users map[int64]*tg.User) Message {
	out := Message{
		ID:   m.ID,
		Text: m.Message,
		Date: formatDate(m.Date),
	}

	if from, ok := m.GetFromID(); ok {
		if pu, ok := from.(*tg.PeerUser); ok {
			id := strconv.FormatInt(pu.UserID, 10)
			out.FromID = &id
			if u, ok := users[pu.UserID]; ok {
				out.FromName = displayName(u)
			}
		}
	}

	if rt, ok := m.GetReplyTo(); ok {
		if h, ok := rt.(*tg.MessageReplyHeader); ok {
			if id, ok := h.GetReplyToMsgID(); ok {
				out.ReplyToID = &id
			}
		}
	}

	if v, ok := m.GetViews(); ok {
		out.Views = &v
	}
	if f, ok := m.GetForwards(); ok {
		out.Forwards = &f
	}

	return out
}

// normalizeDialogs converts a raw GetDialogs response into dialog summaries.
func normalizeDialogs(res tg.MessagesDialogsClass) ([]Dialog, error) {
	var (
		dialogs  []tg.DialogClass
		messages []tg.MessageClass
		chats    []tg.ChatClass
		users    []tg.UserClass
	)

	switch r := res.(type) {
	case *tg.MessagesDialogs:
		dialogs, messages, chats, users = r.Dialogs, r.Messages, r.Chats, r.Users
	case *tg.MessagesDialogsSlice:
		dialogs, messages, chats, users = r.Dialogs, r.Messages, r.Chats, r.Users
	default:
		return nil, fmt.Errorf("unexpected dialogs response type %T", res)
	}

	userIdx := indexUsers(users)
	chatIdx := indexChats(chats)
	topIdx := indexTopMessages(messages)

	out := make([]Dialog, 0, len(dialogs))
	for _, dc := range dialogs {
		d, ok := dc.(*tg.Dialog)
		if !ok {
			// Dialog folders are not conversations.
			continue
		}
		if dialog, ok := buildDialog(d, userIdx, chatIdx, topIdx); ok {
			out = append(out, dialog)
		}
	}
	return out, nil
}

// normalizeHistory converts a raw GetHistory response into messages.
func normalizeHistory(res tg.MessagesMessagesClass) ([]Message, error) {
	var (
		messages []tg.MessageClass
		users    []tg.UserClass
	)

	switch r := res.(type) {
	case *tg.MessagesMessages:
		messages, users = r.Messages, r.Users
	case *tg.MessagesMessagesSlice:
		messages, users = r.Messages, r.Users
	case *tg.MessagesChannelMessages:
		messages, users = r.Messages, r.Users
	default:
		return nil, fmt.Errorf("unexpected history response type %T", res)
	}

	userIdx := indexUsers(users)

	out := make([]Message, 0, len(messages))
	for _, mc := range messages {
		m, ok := mc.(*tg.Message)
		if !ok {
			// Service messages and holes carry no user content.
			continue
		}
		out = append(out, buildMessage(m, userIdx))
	}
	return out, nil
}

// toMe converts the backend's own-user record.
func toMe(u *tg.User) Me {
	if u == nil {
		return Me{}
	}
	return Me{
		ID:        strconv.FormatInt(u.ID, 10),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Phone:     u.Phone,
		IsBot:     u.Bot,
	}
}
