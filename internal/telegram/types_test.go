package telegram

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDialogsKinds(t *testing.T) {
	res := &tg.MessagesDialogs{
		Dialogs: []tg.DialogClass{
			&tg.Dialog{Peer: &tg.PeerUser{UserID: 111}, TopMessage: 7, UnreadCount: 3},
			&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 222}},
		},
		Messages: []tg.MessageClass{
			&tg.Message{ID: 7, PeerID: &tg.PeerUser{UserID: 111}, Message: "hello", Date: 1700000000},
		},
		Chats: []tg.ChatClass{
			&tg.Channel{ID: 222, Title: "News", Username: "newsfeed", Broadcast: true},
		},
		Users: []tg.UserClass{
			&tg.User{ID: 111, FirstName: "Alice", LastName: "Smith", Username: "alice", Phone: "+1555"},
		},
	}

	dialogs, err := normalizeDialogs(res)
	require.NoError(t, err)
	require.Len(t, dialogs, 2)

	user := dialogs[0]
	assert.Equal(t, "111", user.ID)
	assert.Equal(t, "Alice Smith", user.Title)
	assert.True(t, user.IsUser)
	assert.False(t, user.IsGroup)
	assert.False(t, user.IsChannel)
	assert.Equal(t, 3, user.UnreadCount)
	require.NotNil(t, user.User)
	assert.Nil(t, user.Chat)
	assert.Nil(t, user.Channel)
	assert.Equal(t, "alice", user.User.Username)
	require.NotNil(t, user.LastMessage)
	assert.Equal(t, 7, user.LastMessage.ID)
	assert.Equal(t, "hello", user.LastMessage.Text)

	channel := dialogs[1]
	assert.Equal(t, "222", channel.ID)
	assert.Equal(t, "News", channel.Title)
	assert.True(t, channel.IsChannel)
	assert.False(t, channel.IsUser)
	assert.False(t, channel.IsGroup)
	require.NotNil(t, channel.Channel)
	assert.Nil(t, channel.User)
	assert.Nil(t, channel.Chat)
	assert.True(t, channel.Channel.Broadcast)
	assert.Nil(t, channel.LastMessage)
}

func TestNormalizeDialogsJSONShape(t *testing.T) {
	// The wire shape matters to callers: a user dialog carries a "user"
	// field and no "chat"/"channel" field.
	res := &tg.MessagesDialogsSlice{
		Dialogs: []tg.DialogClass{
			&tg.Dialog{Peer: &tg.PeerUser{UserID: 1}},
		},
		Users: []tg.UserClass{
			&tg.User{ID: 1, FirstName: "Bob"},
		},
	}

	dialogs, err := normalizeDialogs(res)
	require.NoError(t, err)

	data, err := json.Marshal(dialogs)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Contains(t, decoded[0], "user")
	assert.NotContains(t, decoded[0], "chat")
	assert.NotContains(t, decoded[0], "channel")
}

func TestNormalizeDialogsMegagroupIsGroup(t *testing.T) {
	res := &tg.MessagesDialogs{
		Dialogs: []tg.DialogClass{
			&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 9}},
		},
		Chats: []tg.ChatClass{
			&tg.Channel{ID: 9, Title: "Big Group", Megagroup: true},
		},
	}

	dialogs, err := normalizeDialogs(res)
	require.NoError(t, err)
	require.Len(t, dialogs, 1)
	assert.True(t, dialogs[0].IsGroup)
	assert.False(t, dialogs[0].IsChannel)
	require.NotNil(t, dialogs[0].Channel)
	assert.True(t, dialogs[0].Channel.Megagroup)
}

func TestNormalizeDialogsBasicGroup(t *testing.T) {
	res := &tg.MessagesDialogs{
		Dialogs: []tg.DialogClass{
			&tg.Dialog{Peer: &tg.PeerChat{ChatID: 33}, UnreadCount: 1},
		},
		Chats: []tg.ChatClass{
			&tg.Chat{ID: 33, Title: "Family", ParticipantsCount: 4},
		},
	}

	dialogs, err := normalizeDialogs(res)
	require.NoError(t, err)
	require.Len(t, dialogs, 1)

	group := dialogs[0]
	assert.True(t, group.IsGroup)
	require.NotNil(t, group.Chat)
	assert.Equal(t, "Family", group.Chat.Title)
	assert.Equal(t, 4, group.Chat.MembersCount)
}

func TestNormalizeDialogsSkipsFoldersAndMissingPeers(t *testing.T) {
	res := &tg.MessagesDialogs{
		Dialogs: []tg.DialogClass{
			&tg.DialogFolder{},
			// Peer without a matching user record.
			&tg.Dialog{Peer: &tg.PeerUser{UserID: 404}},
		},
	}

	dialogs, err := normalizeDialogs(res)
	require.NoError(t, err)
	assert.Empty(t, dialogs)
}

func TestBuildMessageSenderExtraction(t *testing.T) {
	msg := &tg.Message{ID: 10, Message: "hi", Date: 1700000000}
	msg.SetFromID(&tg.PeerUser{UserID: 555})

	users := map[int64]*tg.User{
		555: {ID: 555, FirstName: "Carol"},
	}

	out := buildMessage(msg, users)
	require.NotNil(t, out.FromID)
	assert.Equal(t, "555", *out.FromID)
	assert.Equal(t, "Carol", out.FromName)
}

func TestBuildMessageNonUserSender(t *testing.T) {
	// Channel posts have a channel peer as sender; fromId must be null.
	msg := &tg.Message{ID: 11, Message: "post", Date: 1700000000}
	msg.SetFromID(&tg.PeerChannel{ChannelID: 777})

	out := buildMessage(msg, nil)
	assert.Nil(t, out.FromID)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fromId":null`)
}

func TestBuildMessageOptionalFields(t *testing.T) {
	msg := &tg.Message{ID: 12, Message: "stats", Date: 1700000000}
	msg.SetViews(42)
	msg.SetForwards(3)

	reply := &tg.MessageReplyHeader{}
	reply.SetReplyToMsgID(9)
	msg.SetReplyTo(reply)

	out := buildMessage(msg, nil)
	require.NotNil(t, out.Views)
	assert.Equal(t, 42, *out.Views)
	require.NotNil(t, out.Forwards)
	assert.Equal(t, 3, *out.Forwards)
	require.NotNil(t, out.ReplyToID)
	assert.Equal(t, 9, *out.ReplyToID)
}

func TestBuildMessagePlain(t *testing.T) {
	out := buildMessage(&tg.Message{ID: 13, Message: "plain", Date: 1700000000}, nil)
	assert.Nil(t, out.FromID)
	assert.Nil(t, out.ReplyToID)
	assert.Nil(t, out.Views)
	assert.Nil(t, out.Forwards)
	assert.Equal(t, "plain", out.Text)
	assert.NotEmpty(t, out.Date)
}

func TestNormalizeHistoryVariants(t *testing.T) {
	messages := []tg.MessageClass{
		&tg.Message{ID: 1, Message: "a", Date: 1700000000},
		&tg.MessageService{ID: 2},
		&tg.MessageEmpty{ID: 3},
	}

	for _, res := range []tg.MessagesMessagesClass{
		&tg.MessagesMessages{Messages: messages},
		&tg.MessagesMessagesSlice{Messages: messages},
		&tg.MessagesChannelMessages{Messages: messages},
	} {
		out, err := normalizeHistory(res)
		require.NoError(t, err)
		require.Len(t, out, 1, "service and empty messages are dropped")
		assert.Equal(t, "a", out[0].Text)
	}
}

func TestNormalizeHistoryNotModified(t *testing.T) {
	_, err := normalizeHistory(&tg.MessagesMessagesNotModified{})
	assert.Error(t, err)
}

func TestToMe(t *testing.T) {
	me := toMe(&tg.User{ID: 42, FirstName: "Dana", Username: "dana", Phone: "+1777", Bot: false})
	assert.Equal(t, "42", me.ID)
	assert.Equal(t, "Dana", me.FirstName)
	assert.Equal(t, "dana", me.Username)
	assert.False(t, me.IsBot)

	assert.Equal(t, Me{}, toMe(nil))
}

func TestErrorFormatting(t *testing.T) {
	underlying := errors.New("FLOOD_WAIT_30")
	err := &Error{Op: "get_messages", Err: underlying}

	assert.Equal(t, "telegram get_messages: FLOOD_WAIT_30", err.Error())
	assert.True(t, errors.Is(err, underlying))
}

func TestClientCloseIdempotent(t *testing.T) {
	var c *Client
	assert.NoError(t, c.Close(), "Close on nil client must be safe")

	c = &Client{}
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
