package mastodon

// Minimal projections of the Mastodon REST entities this bot consumes. IDs are
// opaque strings; the remote orders them, we never compare them numerically.

const (
	VisibilityPublic    = "public"
	NotificationMention = "mention"
)

type Account struct {
	ID   string `json:"id"`
	Acct string `json:"acct,omitempty"`
	URI  string `json:"uri"`
}

type Tag struct {
	Name string `json:"name"`
}

type Status struct {
	ID          string  `json:"id"`
	Account     Account `json:"account"`
	Content     string  `json:"content,omitempty"`
	Visibility  string  `json:"visibility,omitempty"`
	InReplyToID string  `json:"in_reply_to_id,omitempty"`
	Tags        []Tag   `json:"tags,omitempty"`
}

type Notification struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Status *Status `json:"status,omitempty"`
}
