package telephony

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionNames(actions []Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Action
	}
	return names
}

func TestGreet(t *testing.T) {
	actions := Greet("Welcome", VoiceMale)

	require.Equal(t, []string{ActionRecordStart, ActionSpeak, ActionGatherUsingSpeak}, actionNames(actions))

	speak, ok := actions[1].Payload.(SpeakPayload)
	require.True(t, ok)
	assert.Equal(t, "Welcome", speak.Text)
	assert.Equal(t, VoiceMale, speak.Voice)
	assert.Equal(t, DefaultLanguage, speak.Language)

	gather, ok := actions[2].Payload.(GatherUsingSpeakPayload)
	require.True(t, ok)
	assert.True(t, gather.SpeechRecognition.Enabled)
	assert.Greater(t, gather.TimeoutMillis, 0)
}

func TestRejectCall(t *testing.T) {
	actions := RejectCall("not in service", VoiceFemale)

	require.Equal(t, []string{ActionAnswer, ActionSpeak, ActionHangup}, actionNames(actions))

	speak, ok := actions[1].Payload.(SpeakPayload)
	require.True(t, ok)
	assert.Equal(t, "not in service", speak.Text)

	// answer and hangup carry no payload
	assert.Nil(t, actions[0].Payload)
	assert.Nil(t, actions[2].Payload)
}

func TestSpeakAndContinue(t *testing.T) {
	continuing := SpeakAndContinue("Sure, what day works?", VoiceFemale, true)
	require.Equal(t, []string{ActionSpeak, ActionGatherUsingSpeak}, actionNames(continuing))

	ending := SpeakAndContinue("Goodbye.", VoiceFemale, false)
	require.Equal(t, []string{ActionSpeak, ActionHangup}, actionNames(ending))
}

func TestActionJSONShape(t *testing.T) {
	data, err := json.Marshal(ActionResponse{Actions: []Action{
		Answer(),
		Speak("hello", VoiceMale),
		Hangup(),
	}})
	require.NoError(t, err)

	var decoded struct {
		Actions []struct {
			Action  string          `json:"action"`
			Payload json.RawMessage `json:"payload"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Actions, 3)

	assert.Equal(t, "answer", decoded.Actions[0].Action)
	assert.Empty(t, decoded.Actions[0].Payload, "answer must not serialize a payload")
	assert.Equal(t, "speak", decoded.Actions[1].Action)
	assert.NotEmpty(t, decoded.Actions[1].Payload)
	assert.Equal(t, "hangup", decoded.Actions[2].Action)
}

func TestGatherResponseUtterance(t *testing.T) {
	assert.Equal(t, "", (*GatherResponse)(nil).Utterance())
	assert.Equal(t, "", (&GatherResponse{}).Utterance())
	assert.Equal(t, "book an appointment", (&GatherResponse{Speech: "book an appointment"}).Utterance())
	assert.Equal(t, "1", (&GatherResponse{Digits: "1"}).Utterance())
	assert.Equal(t, "yes", (&GatherResponse{Speech: "yes", Digits: "2"}).Utterance(), "speech wins over digits")
}

func TestWebhookEventValid(t *testing.T) {
	valid := WebhookEvent{Data: WebhookData{
		EventType: EventCallInitiated,
		Payload:   WebhookPayload{CallControlID: "cc-1"},
	}}
	assert.True(t, valid.Valid())

	assert.False(t, (&WebhookEvent{}).Valid())

	noCall := WebhookEvent{Data: WebhookData{EventType: EventCallHangup}}
	assert.False(t, noCall.Valid())
}
