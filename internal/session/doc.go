// Package session persists the two artifacts a Telegram account needs to
// reconnect without interactive authentication: an API credentials record
// (api_id, api_hash, phone number) and an opaque session blob.
//
// The credentials file is JSON at <dir>/credentials.json:
//
//	{"apiId":"123","apiHash":"abc","phoneNumber":"+10000000000"}
//
// The session file at <dir>/session.json holds the opaque blob as written by
// the MTProto client; it is trimmed of surrounding whitespace on read and is
// only ever (re)created by the interactive auth flow or by the client library
// refreshing its own keys.
//
// Missing files are not errors: LoadCredentials returns a nil record and
// LoadSessionToken returns an empty string. Malformed credentials, however,
// fail descriptively rather than being silently treated as absent.
package session
