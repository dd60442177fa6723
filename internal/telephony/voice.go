package telephony

// Provider voice codes accepted by Telnyx speak/gather actions
const (
	VoiceMale   = "male"
	VoiceFemale = "female"
)

// voiceCodes maps internal agent voice labels to provider voice codes
var voiceCodes = map[string]string{
	"alloy":   VoiceMale,
	"echo":    VoiceMale,
	"onyx":    VoiceMale,
	"nova":    VoiceFemale,
	"shimmer": VoiceFemale,
	"fable":   VoiceFemale,
}

// MapVoice resolves an agent's voice label to a provider voice code.
// Unrecognized labels, including the empty string, fall back to the
// female voice so the mapping is total.
func MapVoice(label string) string {
	if code, ok := voiceCodes[label]; ok {
		return code
	}
	return VoiceFemale
}
