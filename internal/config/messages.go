package config

// Caller-facing fallback messages. Every failure path resolves to one of
// these spoken lines followed by a clean hangup; internal error details are
// never spoken to the caller.
const (
	MsgNumberNotInService = "We're sorry, this number is not currently in service. Please check the number and try again."
	MsgAgentUnavailable   = "We're sorry, this business is currently unavailable. Please try again later."
	MsgDidNotCatch        = "I didn't catch that. Could you please repeat what you said?"
	MsgRelayFailure       = "I apologize, I'm having trouble understanding right now. Please call back later, and we'll be happy to help you."
	MsgTransferGoodbye    = "Thank you for calling. Someone from our team will follow up with you shortly. Goodbye."
)
