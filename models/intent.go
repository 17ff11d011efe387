package models

// MessageIntent is the discrete purpose a chat message is classified as.
type MessageIntent string

const (
	IntentBookingAppointment   MessageIntent = "booking_appointment"
	IntentCancelAppointment    MessageIntent = "cancel_appointment"
	IntentCheckHours           MessageIntent = "check_hours"
	IntentBillingInquiry       MessageIntent = "billing_inquiry"
	IntentMedicalRecords       MessageIntent = "medical_records"
	IntentSymptomInquiry       MessageIntent = "symptom_inquiry"
	IntentDoctorInquiry        MessageIntent = "doctor_inquiry"
	IntentInsuranceInquiry     MessageIntent = "insurance_inquiry"
	IntentMedicationInquiry    MessageIntent = "medication_inquiry"
	IntentEmergencyInquiry     MessageIntent = "emergency_inquiry"
	IntentCovidInquiry         MessageIntent = "covid_inquiry"
	IntentTelemedicineInquiry  MessageIntent = "telemedicine_inquiry"
	IntentLabResultsInquiry    MessageIntent = "lab_results_inquiry"
	IntentSpecialistReferral   MessageIntent = "specialist_referral"
	IntentAuthorizationInquiry MessageIntent = "authorization_inquiry"
	IntentGreeting             MessageIntent = "greeting"
	IntentThanks               MessageIntent = "thanks"
	IntentGoodbye              MessageIntent = "goodbye"
	IntentHelp                 MessageIntent = "help"
	IntentGeneralInquiry       MessageIntent = "general_inquiry"
)

// AllIntents lists every intent in classifier table order, fallback last.
var AllIntents = []MessageIntent{
	IntentBookingAppointment,
	IntentCancelAppointment,
	IntentCheckHours,
	IntentBillingInquiry,
	IntentMedicalRecords,
	IntentSymptomInquiry,
	IntentDoctorInquiry,
	IntentInsuranceInquiry,
	IntentMedicationInquiry,
	IntentEmergencyInquiry,
	IntentCovidInquiry,
	IntentTelemedicineInquiry,
	IntentLabResultsInquiry,
	IntentSpecialistReferral,
	IntentAuthorizationInquiry,
	IntentGreeting,
	IntentThanks,
	IntentGoodbye,
	IntentHelp,
	IntentGeneralInquiry,
}

// IsValid reports whether the intent belongs to the closed enumeration.
func (i MessageIntent) IsValid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}
