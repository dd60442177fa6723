package telephony

// Call action names understood by the Telnyx command schema
const (
	ActionAnswer           = "answer"
	ActionRecordStart      = "record_start"
	ActionSpeak            = "speak"
	ActionGatherUsingSpeak = "gather_using_speak"
	ActionHangup           = "hangup"
)

// Defaults applied to every assembled instruction list
const (
	DefaultLanguage           = "en-US"
	defaultRecordFormat       = "mp3"
	defaultRecordChannels     = "dual"
	defaultGatherTimeoutMs    = 10000
	defaultSpeechTimeoutMs    = 5000
	speechRecognitionLanguage = "en-US"
)

// Action is one instruction returned to Telnyx in the webhook response.
// Payload is nil for actions that carry none (answer, hangup).
type Action struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
}

// RecordStartPayload configures call recording
type RecordStartPayload struct {
	Format   string `json:"format"`
	Channels string `json:"channels"`
}

// SpeakPayload plays synthesized speech to the caller
type SpeakPayload struct {
	Text     string `json:"text"`
	Voice    string `json:"voice"`
	Language string `json:"language"`
}

// GatherUsingSpeakPayload speaks a prompt and waits for caller input
type GatherUsingSpeakPayload struct {
	Text              string            `json:"text"`
	Voice             string            `json:"voice"`
	Language          string            `json:"language"`
	TimeoutMillis     int               `json:"timeout_millis"`
	SpeechRecognition SpeechRecognition `json:"speech_recognition"`
}

// SpeechRecognition enables speech-to-text on a gather
type SpeechRecognition struct {
	Enabled       bool   `json:"enabled"`
	Language      string `json:"language"`
	TimeoutMillis int    `json:"timeout_millis"`
}

// ActionResponse is the webhook response body when the dispatcher has
// instructions for the provider
type ActionResponse struct {
	Actions []Action `json:"actions"`
}

// AckResponse is the webhook response body for events that produce no
// instructions
type AckResponse struct {
	Status string `json:"status"`
}

// Non-action acknowledgement statuses
const (
	StatusReceived = "received"
	StatusError    = "error"
)

// Answer builds the answer instruction
func Answer() Action {
	return Action{Action: ActionAnswer}
}

// RecordStart builds the start-recording instruction with the default
// format and channel layout
func RecordStart() Action {
	return Action{
		Action: ActionRecordStart,
		Payload: RecordStartPayload{
			Format:   defaultRecordFormat,
			Channels: defaultRecordChannels,
		},
	}
}

// Speak builds a speak instruction for the given text and provider voice
func Speak(text, voice string) Action {
	return Action{
		Action: ActionSpeak,
		Payload: SpeakPayload{
			Text:     text,
			Voice:    voice,
			Language: DefaultLanguage,
		},
	}
}

// Gather builds a gather_using_speak instruction that prompts the caller
// and listens for speech or DTMF
func Gather(text, voice string) Action {
	return Action{
		Action: ActionGatherUsingSpeak,
		Payload: GatherUsingSpeakPayload{
			Text:          text,
			Voice:         voice,
			Language:      DefaultLanguage,
			TimeoutMillis: defaultGatherTimeoutMs,
			SpeechRecognition: SpeechRecognition{
				Enabled:       true,
				Language:      speechRecognitionLanguage,
				TimeoutMillis: defaultSpeechTimeoutMs,
			},
		},
	}
}

// Hangup builds the hangup instruction
func Hangup() Action {
	return Action{Action: ActionHangup}
}

// SpeakAndContinue assembles the instruction list for one conversational
// reply: speak the message, then either gather the next caller input or
// hang up when continueCall is false.
func SpeakAndContinue(message, voice string, continueCall bool) []Action {
	if !continueCall {
		return []Action{Speak(message, voice), Hangup()}
	}
	return []Action{
		Speak(message, voice),
		Gather(listeningPrompt, voice),
	}
}

// RejectCall assembles the instruction list for a call this service will
// not handle: answer so the caller hears the message, speak it, hang up.
func RejectCall(message, voice string) []Action {
	return []Action{Answer(), Speak(message, voice), Hangup()}
}

// Greet assembles the post-answer instruction list: start recording, speak
// the greeting, then gather the caller's first input.
func Greet(greeting, voice string) []Action {
	return []Action{
		RecordStart(),
		Speak(greeting, voice),
		Gather(listeningPrompt, voice),
	}
}

// listeningPrompt is spoken by the gather that follows a reply, opening
// the recognition window without repeating the reply itself.
const listeningPrompt = "I'm listening."
