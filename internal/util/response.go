package util

// Envelope is the JSON object every handler replies with.
type Envelope map[string]any

// Error wraps a client facing failure message.
func Error(message string) Envelope {
	return Envelope{"message": message}
}
