package transcript

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry. Its position in the log is its
// identity; there is no generated id.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	ImageRef  string    `json:"image_ref,omitempty"`
	AudioRef  string    `json:"audio_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Patch carries the only mutable fields of an already-appended message.
// Zero-valued fields are left untouched by Log.Patch.
type Patch struct {
	AudioRef string
	ImageRef string
}
