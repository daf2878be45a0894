package live

// Message types exchanged with the live page
const (
	TypeStart   = "start"
	TypeTrigger = "trigger"
	TypeRender  = "render"
	TypePing    = "ping"
	TypePong    = "pong"
)

// Message is the JSON frame sent over the live socket in both directions
type Message struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Label    string `json:"label,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	Seq      uint64 `json:"seq,omitempty"`
}
