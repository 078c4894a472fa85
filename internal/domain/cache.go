package domain

// CachedResponse is the memoized bot reply for one (user, message) pair.
type CachedResponse struct {
	Response string `json:"response"`
	Topic    string `json:"topic,omitempty"`
}
