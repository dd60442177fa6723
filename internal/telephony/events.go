package telephony

// Telnyx Call Control webhook event types handled by the voice webhook.
// EventType is a distinct string type so the dispatcher can switch over the
// declared constants exhaustively instead of raw strings.
type EventType string

const (
	EventCallInitiated      EventType = "call.initiated"
	EventCallAnswered       EventType = "call.answered"
	EventCallSpeakEnded     EventType = "call.speak.ended"
	EventCallGatherEnded    EventType = "call.gather.ended"
	EventCallHangup         EventType = "call.hangup"
	EventCallRecordingSaved EventType = "call.recording.saved"
)

// WebhookEvent is the Telnyx Call Control webhook envelope
type WebhookEvent struct {
	Data WebhookData `json:"data"`
}

// WebhookData carries the event identity and its payload
type WebhookData struct {
	ID        string         `json:"id"`
	EventType EventType      `json:"event_type"`
	Payload   WebhookPayload `json:"payload"`
}

// WebhookPayload holds the call-level fields delivered with each event.
// Only the fields the dispatcher reads are declared; Telnyx sends more.
type WebhookPayload struct {
	CallControlID string          `json:"call_control_id"`
	CallLegID     string          `json:"call_leg_id,omitempty"`
	CallSessionID string          `json:"call_session_id,omitempty"`
	ConnectionID  string          `json:"connection_id,omitempty"`
	From          string          `json:"from"`
	To            string          `json:"to"`
	Direction     string          `json:"direction"`
	State         string          `json:"state,omitempty"`
	HangupCause   string          `json:"hangup_cause,omitempty"`
	HangupSource  string          `json:"hangup_source,omitempty"`
	DurationSecs  int             `json:"duration_secs,omitempty"`
	RecordingURLs []RecordingURL  `json:"recording_urls,omitempty"`
	UserResponse  *GatherResponse `json:"user_response,omitempty"`
}

// RecordingURL is one entry of the recording_urls array on
// call.recording.saved events
type RecordingURL struct {
	URL string `json:"url"`
}

// GatherResponse carries the caller input collected by a gather action:
// a speech-to-text transcript, DTMF digits, or neither.
type GatherResponse struct {
	Speech string `json:"speech,omitempty"`
	Digits string `json:"digits,omitempty"`
}

// Utterance returns the caller input to relay, preferring speech over
// digits. Empty when the gather timed out with no input.
func (g *GatherResponse) Utterance() string {
	if g == nil {
		return ""
	}
	if g.Speech != "" {
		return g.Speech
	}
	return g.Digits
}

// Valid reports whether the envelope carries the minimum event metadata
// needed to dispatch it.
func (e *WebhookEvent) Valid() bool {
	return e.Data.EventType != "" && e.Data.Payload.CallControlID != ""
}
