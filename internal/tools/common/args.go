package common

// StringArg extracts a string argument, returning ok=false when absent or
// not a string.
func StringArg(args map[string]interface{}, key string) (string, bool) {
	val, ok := args[key].(string)
	return val, ok
}

// IntArg extracts a numeric argument, falling back when absent or not a
// number. JSON numbers arrive through the transport as float64.
func IntArg(args map[string]interface{}, key string, fallback int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	return fallback
}

// PeerFromArgs extracts the target peer identifier from request arguments.
// Tools name it either "chatId" (bot tools) or "entityId" (account tools).
func PeerFromArgs(args map[string]interface{}) string {
	if val, ok := args["chatId"].(string); ok && val != "" {
		return val
	}
	if val, ok := args["entityId"].(string); ok && val != "" {
		return val
	}
	return ""
}
