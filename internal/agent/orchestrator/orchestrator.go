package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/business"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/classify"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/conversations"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/extract"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
	errx "github.com/codexcapeusman-ui/Devia-Backend/internal/core/error"
	logx "github.com/codexcapeusman-ui/Devia-Backend/pkg/logger"
)

// Config tunes the turn flow. Zero values are not usable; build it from the
// env-backed model configs.
type Config struct {
	// HighConfidence is the threshold a mid-conversation intent change must
	// clear to restart the flow.
	HighConfidence float64
	// MinConfidence is the floor below which the turn asks for clarification.
	MinConfidence float64
	// DispatchTimeout bounds one business operation call.
	DispatchTimeout time.Duration
}

// Orchestrator runs one conversation turn end to end: classify, extract,
// accumulate, and dispatch once every required field is present.
type Orchestrator struct {
	store     *conversations.Store
	extractor extract.TextExtractor
	ops       business.Operations
	config    Config

	newConversationID func() string
}

func New(store *conversations.Store, extractor extract.TextExtractor, ops business.Operations, config Config) *Orchestrator {
	return &Orchestrator{
		store:             store,
		extractor:         extractor,
		ops:               ops,
		config:            config,
		newConversationID: uuid.NewString,
	}
}

// ProcessRequest handles one turn. Conversational outcomes, including failed
// dispatches, come back as an AgentResponse; the error return is reserved for
// storage failures and for requests that may not touch the conversation at
// all (missing user id, conversation owned by someone else).
func (o *Orchestrator) ProcessRequest(ctx context.Context, req model.Request) (*model.AgentResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, errors.New("user_id is required")
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = o.newConversationID()
	}

	unlock := o.store.Lock(conversationID)
	defer unlock()

	state, err := o.store.GetOrCreate(ctx, conversationID, req.UserID)
	if err != nil {
		return nil, err
	}
	state.TurnCount++

	prompt := strings.TrimSpace(req.Prompt)

	if classify.IsResetCommand(prompt) {
		if err := o.store.Delete(ctx, conversationID); err != nil {
			return nil, err
		}
		logx.Info().Str("conversationID", conversationID).Msg("conversation reset by user")
		return &model.AgentResponse{
			ConversationID: conversationID,
			Intent:         model.IntentUnknown,
			Operation:      model.OperationUnknown,
			Status:         model.StatusSuccess,
			Action:         model.ActionReset,
			Message:        "Okay, let's start over. What would you like to do?",
		}, nil
	}

	result := classify.Classify(prompt)
	logx.Debug().
		Str("conversationID", conversationID).
		Str("intent", result.Intent.String()).
		Str("operation", string(result.Operation)).
		Float64("confidence", result.Confidence).
		Msg("classified prompt")

	if state.Phase == model.PhaseAwaitingIntent {
		if result.Confidence < o.config.MinConfidence {
			if err := o.store.Save(ctx, state); err != nil {
				return nil, err
			}
			return o.clarifyResponse(state, result), nil
		}
		state.Intent = result.Intent
		state.Operation = result.Operation
		state.Confidence = result.Confidence
		state.Phase = model.PhaseCollectingFields
	} else if result.Intent != model.IntentUnknown &&
		result.Intent != state.Intent &&
		result.Confidence >= o.config.HighConfidence {
		// Confident switch to a different intent abandons the collected
		// fields and starts the new flow in the same conversation.
		logx.Info().
			Str("conversationID", conversationID).
			Str("from", state.Intent.String()).
			Str("to", result.Intent.String()).
			Msg("intent switched mid-conversation")
		fresh := model.NewConversationState(conversationID, req.UserID)
		fresh.TurnCount = state.TurnCount
		fresh.CreatedAt = state.CreatedAt
		state = fresh
		state.Intent = result.Intent
		state.Operation = result.Operation
		state.Confidence = result.Confidence
		state.Phase = model.PhaseCollectingFields
	} else if state.Operation == model.OperationUnknown && result.Operation != model.OperationUnknown {
		state.Operation = result.Operation
	}

	switch state.Operation {
	case model.OperationGet:
		return o.handleGet(ctx, state, prompt)
	case model.OperationDelete:
		return o.handleDelete(ctx, state, prompt)
	case model.OperationUpdate:
		return o.handleUpdate(ctx, state, prompt)
	default:
		return o.handleCreate(ctx, state, prompt)
	}
}

// handleGet dispatches immediately: reads never collect fields across turns.
func (o *Orchestrator) handleGet(ctx context.Context, state *model.ConversationState, prompt string) (*model.AgentResponse, error) {
	if classify.IsSpecificQuery(prompt) {
		id := classify.ExtractID(prompt)
		if id == "" {
			state.Phase = model.PhaseCollectingFields
			state.MissingAttempts++
			if err := o.store.Save(ctx, state); err != nil {
				return nil, err
			}
			resp := o.missingDataResponse(state, []string{"id"}, nil)
			resp.Message = fmt.Sprintf("Which %s do you mean? Please give me its identifier.", state.Intent)
			return resp, nil
		}
		return o.dispatch(ctx, state, func(ctx context.Context) (any, error) {
			return o.ops.GetByID(ctx, state.UserID, state.Intent, id)
		}, fmt.Sprintf("Here is the %s you asked for.", state.Intent))
	}

	return o.dispatch(ctx, state, func(ctx context.Context) (any, error) {
		return o.ops.GetCollection(ctx, state.UserID, state.Intent, state.Fields)
	}, fmt.Sprintf("Here are your %ss.", state.Intent))
}

func (o *Orchestrator) handleDelete(ctx context.Context, state *model.ConversationState, prompt string) (*model.AgentResponse, error) {
	id, resp, err := o.resolveID(ctx, state, prompt)
	if resp != nil || err != nil {
		return resp, err
	}
	return o.dispatch(ctx, state, func(ctx context.Context) (any, error) {
		return o.ops.Delete(ctx, state.UserID, state.Intent, id)
	}, fmt.Sprintf("The %s has been deleted.", state.Intent))
}

func (o *Orchestrator) handleUpdate(ctx context.Context, state *model.ConversationState, prompt string) (*model.AgentResponse, error) {
	id, resp, err := o.resolveID(ctx, state, prompt)
	if resp != nil || err != nil {
		return resp, err
	}

	extraction := o.extractFields(ctx, prompt, state.Intent)
	state.Fields.Merge(extraction.Fields)
	state.Fields["id"] = id

	// the remembered id is addressing, not a change to apply
	fields := state.Fields.Clone()
	delete(fields, "id")

	if len(fields) == 0 {
		state.Phase = model.PhaseCollectingFields
		state.MissingAttempts++
		if err := o.store.Save(ctx, state); err != nil {
			return nil, err
		}
		resp := o.missingDataResponse(state, nil, extraction.Invalid)
		resp.Message = fmt.Sprintf("What would you like to change on the %s?", state.Intent)
		return resp, nil
	}

	return o.dispatch(ctx, state, func(ctx context.Context) (any, error) {
		return o.ops.Update(ctx, state.UserID, state.Intent, id, fields)
	}, fmt.Sprintf("The %s has been updated.", state.Intent))
}

func (o *Orchestrator) handleCreate(ctx context.Context, state *model.ConversationState, prompt string) (*model.AgentResponse, error) {
	extraction := o.extractFields(ctx, prompt, state.Intent)
	state.Fields.Merge(extraction.Fields)

	missing := model.MissingRequired(state.Intent, state.Fields)
	if len(missing) > 0 {
		state.Phase = model.PhaseCollectingFields
		state.MissingAttempts++
		if err := o.store.Save(ctx, state); err != nil {
			return nil, err
		}
		return o.missingDataResponse(state, missing, extraction.Invalid), nil
	}

	state.Phase = model.PhaseReadyToDispatch
	fields := state.Fields.Clone()
	return o.dispatch(ctx, state, func(ctx context.Context) (any, error) {
		return o.ops.Create(ctx, state.UserID, state.Intent, fields)
	}, fmt.Sprintf("Your %s has been created.", state.Intent))
}

// resolveID finds the target id for update/delete, remembering it across
// turns. A nil id with a non-nil response means the caller should return the
// follow-up question as-is.
func (o *Orchestrator) resolveID(ctx context.Context, state *model.ConversationState, prompt string) (string, *model.AgentResponse, error) {
	id := classify.ExtractID(prompt)
	if id == "" {
		if v, ok := state.Fields["id"].(string); ok && v != "" {
			id = v
		}
	}
	if id != "" {
		return id, nil, nil
	}

	state.Phase = model.PhaseCollectingFields
	state.MissingAttempts++
	if err := o.store.Save(ctx, state); err != nil {
		return "", nil, err
	}
	resp := o.missingDataResponse(state, []string{"id"}, nil)
	resp.Message = fmt.Sprintf("Which %s should I %s? Please give me its identifier.", state.Intent, state.Operation)
	return "", resp, nil
}

// dispatch runs one business call under the configured timeout. Success ends
// the conversation; failure keeps it alive so the user can retry or reset.
func (o *Orchestrator) dispatch(ctx context.Context, state *model.ConversationState, call func(context.Context) (any, error), successMessage string) (*model.AgentResponse, error) {
	state.Phase = model.PhaseReadyToDispatch

	opCtx, cancel := context.WithTimeout(ctx, o.config.DispatchTimeout)
	defer cancel()

	data, err := call(opCtx)
	if err != nil {
		logx.Error().Err(err).
			Str("conversationID", state.ConversationID).
			Str("intent", state.Intent.String()).
			Str("operation", string(state.Operation)).
			Msg("business operation failed")
		if saveErr := o.store.Save(ctx, state); saveErr != nil {
			return nil, saveErr
		}
		return o.errorResponse(state, err), nil
	}

	if err := o.store.Delete(ctx, state.ConversationID); err != nil {
		return nil, err
	}
	logx.Info().
		Str("conversationID", state.ConversationID).
		Str("intent", state.Intent.String()).
		Str("operation", string(state.Operation)).
		Msg("business operation dispatched")

	return &model.AgentResponse{
		ConversationID: state.ConversationID,
		Intent:         state.Intent,
		Operation:      state.Operation,
		Confidence:     state.Confidence,
		Status:         model.StatusSuccess,
		Action:         model.ActionCompleted,
		Message:        successMessage,
		Data:           data,
	}, nil
}

// extractFields never fails a turn: an extractor error just means the turn
// contributes nothing new.
func (o *Orchestrator) extractFields(ctx context.Context, prompt string, intent model.Intent) extract.Extraction {
	extraction, err := o.extractor.Extract(ctx, prompt, intent)
	if err != nil {
		logx.Warn().Err(err).Str("intent", intent.String()).Msg("field extraction failed")
		return extract.Extraction{Fields: model.Fields{}}
	}
	if extraction.Fields == nil {
		extraction.Fields = model.Fields{}
	}
	return extraction
}

func (o *Orchestrator) clarifyResponse(state *model.ConversationState, result classify.Result) *model.AgentResponse {
	return &model.AgentResponse{
		ConversationID: state.ConversationID,
		Intent:         result.Intent,
		Operation:      result.Operation,
		Confidence:     result.Confidence,
		Status:         model.StatusMissingData,
		Action:         model.ActionClarifyIntent,
		Message:        "I can help you with invoices, quotes, customers, jobs and expenses. What would you like to do?",
	}
}

func (o *Orchestrator) missingDataResponse(state *model.ConversationState, missing []string, invalid []string) *model.AgentResponse {
	var message string
	if len(missing) > 0 {
		message = fmt.Sprintf("To %s the %s I still need: %s.",
			createVerb(state.Operation), state.Intent,
			strings.Join(model.FieldLabels(missing), ", "))
	}
	if len(invalid) > 0 {
		correction := fmt.Sprintf("I couldn't make sense of: %s. Could you restate those?",
			strings.Join(model.FieldLabels(invalid), ", "))
		if message == "" {
			message = correction
		} else {
			message = message + " " + correction
		}
	}
	return &model.AgentResponse{
		ConversationID: state.ConversationID,
		Intent:         state.Intent,
		Operation:      state.Operation,
		Confidence:     state.Confidence,
		Status:         model.StatusMissingData,
		Action:         model.ActionProvideMissingData,
		Message:        message,
		MissingFields:  missing,
		Context:        state.Fields.Clone(),
	}
}

func (o *Orchestrator) errorResponse(state *model.ConversationState, err error) *model.AgentResponse {
	message := errx.DispatchErrorMessage
	switch {
	case errors.Is(err, business.ErrNotFound):
		message = fmt.Sprintf("I couldn't find that %s.", state.Intent)
	case errors.Is(err, business.ErrValidation):
		message = fmt.Sprintf("The %s data doesn't look right: %v.", state.Intent, err)
	case errors.Is(err, context.DeadlineExceeded):
		message = "The operation took too long. Please try again."
	}
	return &model.AgentResponse{
		ConversationID: state.ConversationID,
		Intent:         state.Intent,
		Operation:      state.Operation,
		Confidence:     state.Confidence,
		Status:         model.StatusError,
		Action:         model.ActionError,
		Message:        message,
		Context:        state.Fields.Clone(),
	}
}

func createVerb(op model.Operation) string {
	switch op {
	case model.OperationUpdate:
		return "update"
	case model.OperationDelete:
		return "delete"
	case model.OperationGet:
		return "look up"
	default:
		return "create"
	}
}

// ConversationStatus reports the live state of a conversation without
// advancing it.
func (o *Orchestrator) ConversationStatus(ctx context.Context, conversationID, userID string) (model.ConversationStatus, error) {
	return o.store.Status(ctx, conversationID, userID)
}

// ResetConversation discards a conversation regardless of its phase.
func (o *Orchestrator) ResetConversation(ctx context.Context, conversationID, userID string) error {
	unlock := o.store.Lock(conversationID)
	defer unlock()

	state, err := o.store.GetOrCreate(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if state.TurnCount == 0 {
		// Nothing stored; nothing to reset.
		return nil
	}
	return o.store.Delete(ctx, conversationID)
}
