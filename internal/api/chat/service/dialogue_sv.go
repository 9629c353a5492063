package chatService

import (
	"ExpenseChat/internal/api/chat"
	"ExpenseChat/internal/api/ledger"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	contextPkg "ExpenseChat/pkg/context"
	"ExpenseChat/pkg/nlp"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	textCancelled      = "Okay, I've discarded that entry."
	textNothingPending = "There's nothing to cancel right now."
	textExpired        = "Sorry, I couldn't complete this entry. Let's start over whenever you're ready."
	textNonPositive    = "The amount has to be greater than zero."
)

func (s *chatService) SendUtterance(ctx context.Context, userID, conversationID, text string, now time.Time) (entity.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entity.Reply{}, chat.ErrEmptyUtterance
	}
	if strings.TrimSpace(userID) == "" {
		return entity.Reply{}, ledger.ErrInvalidUserID
	}
	if strings.TrimSpace(conversationID) == "" {
		return entity.Reply{}, chat.ErrInvalidConversationID
	}

	unlock := s.locks.Lock(userID + "\x00" + conversationID)
	defer unlock()

	capture, awaiting, err := s.load(ctx, userID, conversationID, now)
	if err != nil {
		return entity.Reply{}, err
	}

	intent := s.parser.ClassifyIntent(text, now)
	switch intent.Kind {
	case nlp.IntentCancel:
		return s.discard(ctx, capture, awaiting)
	case nlp.IntentQuery:
		return s.answer(ctx, userID, *intent.Query, capture, awaiting)
	}

	if !awaiting {
		return s.start(ctx, userID, conversationID, text, now)
	}

	if !s.fill(&capture, text, now) {
		s.merge(&capture, s.parser.Parse(text, now))
	}
	return s.advance(ctx, capture, now)
}

func (s *chatService) Cancel(ctx context.Context, userID, conversationID string) (entity.Reply, error) {
	if strings.TrimSpace(userID) == "" {
		return entity.Reply{}, ledger.ErrInvalidUserID
	}
	if strings.TrimSpace(conversationID) == "" {
		return entity.Reply{}, chat.ErrInvalidConversationID
	}

	unlock := s.locks.Lock(userID + "\x00" + conversationID)
	defer unlock()

	capture, awaiting, err := s.pending.Get(ctx, userID, conversationID)
	if err != nil {
		return entity.Reply{}, s.storeError(ctx, "Failed to read pending capture", err)
	}
	return s.discard(ctx, capture, awaiting)
}

func (s *chatService) Parse(text string, now time.Time) (nlp.ParseResult, nlp.Intent, string) {
	result := s.parser.Parse(text, now)
	return result, s.parser.ClassifyIntent(text, now), s.parser.Describe(result)
}

// load returns the pending capture for the conversation. An expired capture
// is removed and reported as absent.
func (s *chatService) load(ctx context.Context, userID, conversationID string, now time.Time) (entity.PendingCapture, bool, error) {
	capture, ok, err := s.pending.Get(ctx, userID, conversationID)
	if err != nil {
		return entity.PendingCapture{}, false, s.storeError(ctx, "Failed to read pending capture", err)
	}
	if !ok || !capture.Expired(now) {
		return capture, ok, nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id":      contextPkg.GetRequestID(ctx),
		"conversation_id": conversationID,
		"capture_id":      capture.ID,
	}).Info("Pending capture expired")

	if err := s.pending.Delete(ctx, userID, conversationID); err != nil {
		return entity.PendingCapture{}, false, s.storeError(ctx, "Failed to delete expired capture", err)
	}
	return entity.PendingCapture{}, false, nil
}

func (s *chatService) start(ctx context.Context, userID, conversationID, text string, now time.Time) (entity.Reply, error) {
	result := s.parser.Parse(text, now)

	capture := entity.PendingCapture{
		ID:             s.utils.NewUUID(),
		UserID:         userID,
		ConversationID: conversationID,
		Partial:        result.Partial,
		AmbiguousSlots: append([]nlp.Slot(nil), result.AmbiguousSlots...),
		Candidates:     make(map[nlp.Slot][]nlp.Candidate, len(result.Candidates)),
		CreatedAt:      now,
	}
	for slot, candidates := range result.Candidates {
		capture.Candidates[slot] = append([]nlp.Candidate(nil), candidates...)
	}

	return s.advance(ctx, capture, now)
}

// advance commits a resolved capture, gives up once the turn cap is spent, or
// asks the next question.
func (s *chatService) advance(ctx context.Context, capture entity.PendingCapture, now time.Time) (entity.Reply, error) {
	requestID := contextPkg.GetRequestID(ctx)

	notice := ""
	if capture.Partial.Amount != nil && !capture.Partial.Amount.IsPositive() {
		capture.Partial.Clear(nlp.SlotAmount)
		notice = textNonPositive
	}

	s.reconcile(&capture)

	if capture.Resolved() {
		return s.commit(ctx, capture, now)
	}

	if capture.TurnsAsked >= s.maxTurns {
		if err := s.pending.Delete(ctx, capture.UserID, capture.ConversationID); err != nil {
			return entity.Reply{}, s.storeError(ctx, "Failed to delete pending capture", err)
		}

		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"conversation_id": capture.ConversationID,
			"capture_id":      capture.ID,
			"turns":           capture.TurnsAsked,
			"missing":         capture.MissingSlots,
			"ambiguous":       capture.AmbiguousSlots,
		}).Info("Clarification turn cap reached, discarding capture")

		return entity.Reply{
			Kind:   entity.ReplyCancelled,
			Text:   textExpired,
			Reason: entity.ReasonConversationExpired,
		}, nil
	}

	capture.AskedSlot, capture.Options = s.nextQuestion(capture)
	capture.TurnsAsked++
	capture.UpdatedAt = now
	capture.ExpiresAt = now.Add(s.ttl)

	if err := s.pending.Save(ctx, capture); err != nil {
		return entity.Reply{}, s.storeError(ctx, "Failed to save pending capture", err)
	}

	text := s.questionText(capture)
	if notice != "" {
		text = notice + " " + text
	}

	return entity.Reply{
		Kind:    entity.ReplyQuestion,
		Text:    text,
		Slot:    capture.AskedSlot,
		Options: capture.Options,
	}, nil
}

func (s *chatService) commit(ctx context.Context, capture entity.PendingCapture, now time.Time) (entity.Reply, error) {
	requestID := contextPkg.GetRequestID(ctx)
	p := capture.Partial

	req := entity.CommitRequest{
		UserID:         capture.UserID,
		IdempotencyKey: capture.ID,
		Amount:         *p.Amount,
		Currency:       p.Currency,
		Category:       p.Category,
		PaymentMethod:  p.PaymentMethod,
		Note:           p.Note,
		Source:         entity.SourceChat,
	}
	if p.OccurredAt != nil {
		req.OccurredAt = *p.OccurredAt
	} else {
		req.OccurredAt = calendar.Today(now, s.location)
	}

	transaction, err := s.ledger.Commit(ctx, req)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"conversation_id": capture.ConversationID,
			"capture_id":      capture.ID,
			"error":           err.Error(),
		}).Error("Failed to commit captured expense")
		return entity.Reply{}, err
	}

	if err := s.pending.Delete(ctx, capture.UserID, capture.ConversationID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"conversation_id": capture.ConversationID,
			"capture_id":      capture.ID,
			"error":           err.Error(),
		}).Warn("Failed to delete committed capture")
	}

	s.log.WithFields(logrus.Fields{
		"request_id":      requestID,
		"conversation_id": capture.ConversationID,
		"transaction_id":  transaction.ID,
		"turns":           capture.TurnsAsked,
	}).Info("Expense captured from chat")

	return entity.Reply{
		Kind:        entity.ReplyConfirmation,
		Text:        s.confirmationText(transaction, calendar.Today(now, s.location)),
		Transaction: &transaction,
	}, nil
}

func (s *chatService) discard(ctx context.Context, capture entity.PendingCapture, awaiting bool) (entity.Reply, error) {
	if !awaiting {
		return entity.Reply{
			Kind:   entity.ReplyCancelled,
			Text:   textNothingPending,
			Reason: entity.ReasonNothingPending,
		}, nil
	}

	if err := s.pending.Delete(ctx, capture.UserID, capture.ConversationID); err != nil {
		return entity.Reply{}, s.storeError(ctx, "Failed to delete pending capture", err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":      contextPkg.GetRequestID(ctx),
		"conversation_id": capture.ConversationID,
		"capture_id":      capture.ID,
	}).Info("Pending capture cancelled by user")

	return entity.Reply{
		Kind:   entity.ReplyCancelled,
		Text:   textCancelled,
		Reason: entity.ReasonUserCancelled,
	}, nil
}

// answer leaves any pending capture as it is and reminds the user of the
// open question.
func (s *chatService) answer(ctx context.Context, userID string, query nlp.QueryRequest, capture entity.PendingCapture, awaiting bool) (entity.Reply, error) {
	summary, err := s.analytics.Summarize(ctx, userID, query)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Failed to answer spending query")
		return entity.Reply{}, err
	}

	text := s.answerText(summary)
	if awaiting {
		text += "\n\nBack to your entry: " + s.questionText(capture)
	}

	return entity.Reply{
		Kind:   entity.ReplyAnswer,
		Text:   text,
		Answer: &summary,
	}, nil
}

func (s *chatService) storeError(ctx context.Context, msg string, err error) error {
	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"error":      err.Error(),
	}).Error(msg)
	return fmt.Errorf("%w: %v", chat.ErrPendingStore, err)
}
