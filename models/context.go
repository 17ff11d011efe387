package models

import "time"

// FlowStep records one classified turn of a conversation.
type FlowStep struct {
	Intent    MessageIntent `bson:"intent" json:"intent"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
}

// ConversationContext is the state carried across chat turns. The caller
// owns it and passes it into every turn explicitly.
type ConversationContext struct {
	LastIntent       MessageIntent `bson:"last_intent,omitempty" json:"lastIntent,omitempty"`
	LastMessage      string        `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	Entities         Entities      `bson:"entities" json:"entities"`
	ConversationFlow []FlowStep    `bson:"conversation_flow" json:"conversationFlow"`

	BookingInProgress       bool `bson:"booking_in_progress,omitempty" json:"bookingInProgress,omitempty"`
	CancellationInProgress  bool `bson:"cancellation_in_progress,omitempty" json:"cancellationInProgress,omitempty"`
	AuthorizationInProgress bool `bson:"authorization_in_progress,omitempty" json:"authorizationInProgress,omitempty"`

	AppointmentDate  string   `bson:"appointment_date,omitempty" json:"appointmentDate,omitempty"`
	AppointmentTime  string   `bson:"appointment_time,omitempty" json:"appointmentTime,omitempty"`
	Specialty        string   `bson:"specialty,omitempty" json:"specialty,omitempty"`
	DoctorName       string   `bson:"doctor_name,omitempty" json:"doctorName,omitempty"`
	ReportedSymptoms []string `bson:"reported_symptoms,omitempty" json:"reportedSymptoms,omitempty"`
}

// Clone returns a deep copy so that callers never share slices.
func (c ConversationContext) Clone() ConversationContext {
	out := c
	out.Entities = c.Entities.Clone()
	if c.ConversationFlow != nil {
		out.ConversationFlow = append([]FlowStep{}, c.ConversationFlow...)
	}
	if c.ReportedSymptoms != nil {
		out.ReportedSymptoms = append([]string{}, c.ReportedSymptoms...)
	}
	return out
}

// PreviousIntent returns the intent of the turn before the latest one.
// When the context has not yet been updated for the current turn,
// LastIntent already is the previous one.
func (c ConversationContext) PreviousIntent(current MessageIntent) MessageIntent {
	n := len(c.ConversationFlow)
	if n > 0 && c.ConversationFlow[n-1].Intent == current && c.LastIntent == current {
		if n >= 2 {
			return c.ConversationFlow[n-2].Intent
		}
		return ""
	}
	return c.LastIntent
}
