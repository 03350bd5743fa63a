package logger

// Standard field key constants for structured logging.
const (
	FieldComponent  = "component"
	FieldChannel    = "channel"
	FieldChannels   = "channels"
	FieldListenerID = "listener_id"
	FieldEventType  = "event_type"
	FieldError      = "error"
	FieldStatus     = "status"
	FieldRemoteAddr = "remote_addr"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("published", logger.Fields(logger.FieldChannel, "orders"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields carrying an error for a named channel.
func ErrorFields(channel string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldChannel: channel,
		FieldError:   err.Error(),
	}
}
