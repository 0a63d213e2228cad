// Package telegram provides a client for driving a Telegram user account
// over MTProto.
//
// This package wraps github.com/gotd/td and provides functionality for:
//   - Establishing a background connection from persisted credentials and
//     session state
//   - Listing dialogs (conversations) in a normalized shape
//   - Fetching message history for a user, group or channel
//   - Global message search
//   - Reading the authenticated account's own identity
//
// The Telegram data model is polymorphic: a dialog peer is one of user, chat
// or channel, and a message sender is one of several peer kinds. The
// normalization in this package is a single switch over the concrete type,
// producing tagged records where exactly one detail object is populated.
//
// # Authentication
//
// The client never performs interactive authentication. It loads the session
// persisted by the `telegram-mcp auth` command; an unauthorized session is
// reported with guidance to run that flow.
package telegram
