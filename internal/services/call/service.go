package call

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CloudGreet/voice-service/internal/cache"
	"github.com/CloudGreet/voice-service/internal/config"
	"github.com/CloudGreet/voice-service/internal/domain"
	"github.com/CloudGreet/voice-service/internal/repository"
	"github.com/CloudGreet/voice-service/internal/services/conversation"
	"github.com/CloudGreet/voice-service/internal/telephony"
	"github.com/CloudGreet/voice-service/pkg/logger"
	"github.com/CloudGreet/voice-service/pkg/notify"
)

const sideCallTimeout = 10 * time.Second

// RecordingStopper is the slice of the telephony client this service needs
type RecordingStopper interface {
	StopRecording(ctx context.Context, callControlID string) error
}

// Service implements the per-event call handling behind the voice webhook:
// receptionist resolution, call record lifecycle, and the conversational
// loop. Every method returns the instruction list to hand back to the
// provider; caller-facing failures resolve to a spoken fallback, never an
// error the provider would see.
type Service struct {
	repos     repository.RepositoryManager
	lookup    *cache.ReceptionistCache
	generator conversation.Generator
	telnyx    RecordingStopper
	notifier  notify.Sender
}

// NewService creates the call service
func NewService(
	repos repository.RepositoryManager,
	lookup *cache.ReceptionistCache,
	generator conversation.Generator,
	telnyx RecordingStopper,
	notifier notify.Sender,
) *Service {
	return &Service{
		repos:     repos,
		lookup:    lookup,
		generator: generator,
		telnyx:    telnyx,
		notifier:  notifier,
	}
}

// ResolveReceptionist resolves the business and active agent owning an
// inbound number. Returns (nil, nil) when the number has no serviceable
// receptionist; errors are reserved for infrastructure failures.
func (s *Service) ResolveReceptionist(ctx context.Context, toNumber string) (*cache.Receptionist, error) {
	if r, hit := s.lookup.Get(toNumber); hit {
		return r, nil
	}

	assignment, err := s.repos.PhoneNumber().GetAssignedByNumber(ctx, toNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.lookup.SetUnassigned(toNumber)
			return nil, nil
		}
		return nil, fmt.Errorf("lookup phone number: %w", err)
	}

	business, err := s.repos.Business().GetByID(ctx, assignment.BusinessID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.lookup.SetUnassigned(toNumber)
			return nil, nil
		}
		return nil, fmt.Errorf("lookup business: %w", err)
	}

	if business.Status != domain.BusinessStatusActive {
		s.lookup.SetUnassigned(toNumber)
		return nil, nil
	}

	agent, err := s.repos.Agent().GetActiveByBusinessID(ctx, business.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.lookup.SetUnassigned(toNumber)
			return nil, nil
		}
		return nil, fmt.Errorf("lookup active agent: %w", err)
	}

	r := &cache.Receptionist{Business: business, Agent: agent}
	s.lookup.Set(toNumber, r)
	return r, nil
}

// OnInitiated records the new call and decides whether to take it. Assigned
// numbers get an answer instruction; unassigned numbers are answered only
// to speak the out-of-service message and hang up.
func (s *Service) OnInitiated(ctx context.Context, p *telephony.WebhookPayload) ([]telephony.Action, error) {
	direction := p.Direction
	if direction == "" {
		direction = domain.DirectionIncoming
	}

	if _, err := s.repos.Call().Create(ctx, &domain.Call{
		CallControlID: p.CallControlID,
		FromNumber:    p.From,
		ToNumber:      p.To,
		Direction:     direction,
		Status:        domain.CallStatusInitiated,
	}); err != nil {
		return nil, fmt.Errorf("create call record: %w", err)
	}

	receptionist, err := s.ResolveReceptionist(ctx, p.To)
	if err != nil {
		return nil, err
	}

	if receptionist == nil {
		logger.L().Infow("inbound call to unassigned number",
			"call_control_id", p.CallControlID, "to", p.To)
		return telephony.RejectCall(config.MsgNumberNotInService, telephony.VoiceFemale), nil
	}

	return []telephony.Action{telephony.Answer()}, nil
}

// OnAnswered binds the call to its receptionist and greets the caller
func (s *Service) OnAnswered(ctx context.Context, p *telephony.WebhookPayload) ([]telephony.Action, error) {
	receptionist, err := s.ResolveReceptionist(ctx, p.To)
	if err != nil {
		return nil, err
	}

	if receptionist == nil {
		return []telephony.Action{
			telephony.Speak(config.MsgAgentUnavailable, telephony.VoiceFemale),
			telephony.Hangup(),
		}, nil
	}

	if _, err := s.repos.Call().MarkAnswered(ctx, p.CallControlID, receptionist.Business.ID, receptionist.Agent.ID); err != nil {
		return nil, fmt.Errorf("mark call answered: %w", err)
	}

	voice := telephony.MapVoice(receptionist.Agent.Voice)
	greeting := receptionist.Agent.GreetingMessage
	if greeting == "" {
		greeting = fmt.Sprintf("Thank you for calling %s. How can I help you today?", receptionist.Business.BusinessName)
	}

	return telephony.Greet(greeting, voice), nil
}

// OnGatherEnded relays one caller utterance through the conversation
// generator and returns the next instruction list. Empty input re-prompts
// without an external call; generation failure resolves to a spoken
// apology and hangup.
func (s *Service) OnGatherEnded(ctx context.Context, p *telephony.WebhookPayload) ([]telephony.Action, error) {
	receptionist, err := s.ResolveReceptionist(ctx, p.To)
	if err != nil {
		return nil, err
	}

	if receptionist == nil {
		return []telephony.Action{
			telephony.Speak(config.MsgAgentUnavailable, telephony.VoiceFemale),
			telephony.Hangup(),
		}, nil
	}

	voice := telephony.MapVoice(receptionist.Agent.Voice)

	utterance := p.UserResponse.Utterance()
	if utterance == "" {
		return []telephony.Action{telephony.Gather(config.MsgDidNotCatch, voice)}, nil
	}

	reply, err := s.generator.Generate(ctx, receptionist.Business, receptionist.Agent, p.CallControlID, utterance)
	if err != nil {
		logger.L().Errorw("conversation relay failed",
			"call_control_id", p.CallControlID,
			"business_id", receptionist.Business.ID,
			"error", err)
		return telephony.SpeakAndContinue(config.MsgRelayFailure, voice, false), nil
	}

	if reply.ShouldTransfer {
		logger.L().Infow("transfer requested, ending call",
			"call_control_id", p.CallControlID, "business_id", receptionist.Business.ID)
		return []telephony.Action{
			telephony.Speak(reply.Text, voice),
			telephony.Speak(config.MsgTransferGoodbye, voice),
			telephony.Hangup(),
		}, nil
	}

	return telephony.SpeakAndContinue(reply.Text, voice, true), nil
}

// OnHangup finalizes the call record, then fires the best-effort side
// calls: stop the recording at the provider and notify the business owner.
// Neither side call can fail the hangup handling.
func (s *Service) OnHangup(ctx context.Context, p *telephony.WebhookPayload) error {
	call, err := s.repos.Call().MarkCompleted(ctx, p.CallControlID, p.HangupCause, p.DurationSecs)
	if err != nil {
		return fmt.Errorf("mark call completed: %w", err)
	}

	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideCallTimeout)
	defer cancel()

	if err := s.telnyx.StopRecording(sideCtx, p.CallControlID); err != nil {
		logger.L().Warnw("best-effort stop recording failed",
			"call_control_id", p.CallControlID, "error", err)
	}

	s.notifyOwner(sideCtx, call)

	return nil
}

// OnRecordingSaved attaches the first recording URL to the call, no-op
// when the event carries none
func (s *Service) OnRecordingSaved(ctx context.Context, p *telephony.WebhookPayload) error {
	if len(p.RecordingURLs) == 0 || p.RecordingURLs[0].URL == "" {
		logger.L().Debugw("recording saved event without urls",
			"call_control_id", p.CallControlID)
		return nil
	}

	if err := s.repos.Call().AttachRecording(ctx, p.CallControlID, p.RecordingURLs[0].URL); err != nil {
		return fmt.Errorf("attach recording: %w", err)
	}

	return nil
}

// notifyOwner sends the end-of-call summary to the business owner. Calls
// that never resolved a business produce no notification.
func (s *Service) notifyOwner(ctx context.Context, call *domain.Call) {
	if call.BusinessID == "" {
		return
	}

	business, err := s.repos.Business().GetByID(ctx, call.BusinessID)
	if err != nil {
		logger.L().Warnw("cannot load business for call summary",
			"call_control_id", call.CallControlID, "business_id", call.BusinessID, "error", err)
		return
	}

	result := s.notifier.SendCallSummary(ctx, &notify.CallSummary{
		BusinessID:   business.ID,
		ToPhone:      business.NotificationPhone,
		FromNumber:   call.FromNumber,
		DurationSecs: call.DurationSecs,
		HangupCause:  call.HangupCause,
	})
	if !result.OK {
		logger.L().Warnw("best-effort owner notification failed",
			"call_control_id", call.CallControlID, "business_id", business.ID, "error", result.Err)
	}
}
