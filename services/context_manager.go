package services

import (
	"time"

	"clinic-assistant/models"
)

// UpdateConversationContext folds one classified turn into ctx and returns
// the new context. The argument is never modified.
func UpdateConversationContext(ctx models.ConversationContext, message string, intent models.MessageIntent, entities models.Entities) models.ConversationContext {
	return UpdateConversationContextAt(ctx, message, intent, entities, time.Now())
}

// UpdateConversationContextAt is UpdateConversationContext with an explicit
// timestamp for the flow entry.
func UpdateConversationContextAt(ctx models.ConversationContext, message string, intent models.MessageIntent, entities models.Entities, at time.Time) models.ConversationContext {
	next := ctx.Clone()

	next.LastIntent = intent
	next.LastMessage = message
	next.Entities = next.Entities.Merge(entities)
	next.ConversationFlow = append(next.ConversationFlow, models.FlowStep{
		Intent:    intent,
		Timestamp: at,
	})

	switch intent {
	case models.IntentBookingAppointment:
		next.BookingInProgress = true
		if entities.Date != "" {
			next.AppointmentDate = entities.Date
		}
		if entities.Time != "" {
			next.AppointmentTime = entities.Time
		}
		if entities.Specialty != "" {
			next.Specialty = entities.Specialty
		}
		if entities.DoctorName != "" {
			next.DoctorName = entities.DoctorName
		}

	case models.IntentCancelAppointment:
		next.CancellationInProgress = true

	case models.IntentSymptomInquiry:
		if entities.Symptoms != nil {
			next.ReportedSymptoms = append([]string{}, entities.Symptoms...)
		}

	case models.IntentAuthorizationInquiry:
		next.AuthorizationInProgress = true

	case models.IntentGoodbye:
		next.BookingInProgress = false
		next.CancellationInProgress = false
		next.AuthorizationInProgress = false
	}

	return next
}
