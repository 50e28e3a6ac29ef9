package script

// ResultOp describes one required state mutation or side effect. The
// kernel only produces these; the caller applies and persists them, which
// is what keeps the kernel side-effect-free.
//
// ResultOp is sealed: the op vocabulary below is the complete contract
// between the kernel and its callers.
type ResultOp interface {
	OpType() string
	resultOp() // sealed
}

// UpdateTripFields merges a nested partial into the trip's fields.
type UpdateTripFields struct {
	Fields map[string]any `json:"fields"`
}

func (UpdateTripFields) OpType() string { return "updateTripFields" }
func (UpdateTripFields) resultOp()      {}

// UpdatePlayerFields merges a nested partial into one role's player state.
type UpdatePlayerFields struct {
	Role   string         `json:"role"`
	Fields map[string]any `json:"fields"`
}

func (UpdatePlayerFields) OpType() string { return "updatePlayerFields" }
func (UpdatePlayerFields) resultOp()      {}

// CreateMessage records an outgoing message between two roles.
//
// ReplyNeeded is derived, never authored: a message from a non-actor
// (system/NPC) role to an actor (human) role needs a reply.
type CreateMessage struct {
	FromRole    string `json:"from_role"`
	ToRole      string `json:"to_role"`
	Medium      string `json:"medium"` // "text", "image", "audio"
	Content     string `json:"content"`
	ReplyNeeded bool   `json:"reply_needed"`
}

func (CreateMessage) OpType() string { return "createMessage" }
func (CreateMessage) resultOp()      {}

// UpdateUI tells a role's client interface to refresh. An empty Role
// targets every player on the trip.
type UpdateUI struct {
	Role string `json:"role,omitempty"`
}

func (UpdateUI) OpType() string { return "updateUi" }
func (UpdateUI) resultOp()      {}

// InitiateCall asks the telephony integration to place a call.
type InitiateCall struct {
	FromRole        string `json:"from_role"`
	ToRole          string `json:"to_role"`
	DetectVoicemail bool   `json:"detect_voicemail"`
}

func (InitiateCall) OpType() string { return "initiateCall" }
func (InitiateCall) resultOp()      {}

// Twiml is one telephony control clause emitted into an active call:
// play a clip, say a message, or gather a response.
type Twiml struct {
	Clause  string `json:"clause"` // "play", "say", "gather"
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
	Voice   string `json:"voice,omitempty"`
}

func (Twiml) OpType() string { return "twiml" }
func (Twiml) resultOp()      {}

// EventOp re-enters the produced event through the caller as a fresh
// stimulus. The caller - never the kernel - runs the follow-on
// evaluation, so a single kernel call cannot recurse.
type EventOp struct {
	Event Event `json:"event"`
}

func (EventOp) OpType() string { return "event" }
func (EventOp) resultOp()      {}

// LogLevel grades Log ops.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Log records an authoring-time problem (unknown resource reference,
// missing required param) without aborting the surrounding action list.
type Log struct {
	Level   LogLevel `json:"level"`
	Message string   `json:"message"`
}

func (Log) OpType() string { return "log" }
func (Log) resultOp()      {}

// FieldsAtPath builds the nested partial map {"a": {"b": v}} for the
// dotted path a.b, the shape UpdateTripFields/UpdatePlayerFields carry.
func FieldsAtPath(parts []string, value any) map[string]any {
	if len(parts) == 0 {
		return nil
	}
	out := map[string]any{}
	cur := out
	for _, part := range parts[:len(parts)-1] {
		next := map[string]any{}
		cur[part] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = value
	return out
}
