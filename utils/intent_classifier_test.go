package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-assistant/models"
)

func newTestClassifier(t *testing.T) *IntentClassifier {
	t.Helper()
	table, err := LoadPatternTable("")
	require.NoError(t, err)
	return NewIntentClassifier(table)
}

func TestClassifyIntent(t *testing.T) {
	ic := newTestClassifier(t)

	tests := []struct {
		message string
		want    models.MessageIntent
	}{
		{"xyz completely unrelated gibberish", models.IntentGeneralInquiry},
		{"", models.IntentGeneralInquiry},
		{"I want to book an appointment", models.IntentBookingAppointment},
		{"أريد حجز موعد غدا الساعة 10:00", models.IntentBookingAppointment},
		{"thank you", models.IntentThanks},
		{"شكرا جزيلا", models.IntentThanks},
		{"مرحبا", models.IntentGreeting},
		{"مع السلامة", models.IntentGoodbye},
		{"أريد إلغاء موعدي", models.IntentCancelAppointment},
		{"cancel my appointment", models.IntentCancelAppointment},
		{"ما هي ساعات العمل؟", models.IntentCheckHours},
		{"كم تكلفة الكشف؟", models.IntentBillingInquiry},
		{"أريد السجل الطبي", models.IntentMedicalRecords},
		{"عندي صداع وحمى", models.IntentSymptomInquiry},
		{"هل لديكم دكتور قلب؟", models.IntentDoctorInquiry},
		{"هل التأمين يغطي الكشف؟", models.IntentInsuranceInquiry},
		{"أحتاج إعادة صرف الدواء", models.IntentMedicationInquiry},
		{"ألم في الصدر", models.IntentEmergencyInquiry},
		{"هل عندكم لقاح كورونا؟", models.IntentCovidInquiry},
		{"هل يوجد استشارة عن بعد؟", models.IntentTelemedicineInquiry},
		{"أريد نتائج التحاليل", models.IntentLabResultsInquiry},
		{"أحتاج تحويل إلى أخصائي", models.IntentSpecialistReferral},
		{"أحتاج موافقة التأمين على العملية", models.IntentAuthorizationInquiry},
		{"help", models.IntentHelp},
		{"HELLO THERE", models.IntentGreeting},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, ic.ClassifyIntent(tt.message))
		})
	}
}

func TestClassifyIntent_WeightsAdd(t *testing.T) {
	ic := newTestClassifier(t)

	scores := ic.Scores("I want to book an appointment")
	var booking float64
	for _, s := range scores {
		if s.Intent == models.IntentBookingAppointment {
			booking = s.Score
			continue
		}
		assert.Less(t, s.Score, 1.0, "intent %s", s.Intent)
	}
	// "book an appointment" + "appointment" + "book"
	assert.InDelta(t, 2.3, booking, 1e-9)
}

func TestClassifyIntent_BelowThresholdFallsBack(t *testing.T) {
	ic := newTestClassifier(t)

	// "test" votes for three intents but none reaches 0.5.
	scores := ic.Scores("test")
	nonZero := 0
	for _, s := range scores {
		if s.Score > 0 {
			nonZero++
			assert.Less(t, s.Score, DefaultThreshold)
		}
	}
	assert.Equal(t, 3, nonZero)
	assert.Equal(t, models.IntentGeneralInquiry, ic.ClassifyIntent("test"))
}

func TestClassifyIntent_TieGoesToTableOrder(t *testing.T) {
	table, err := ParsePatternTable([]byte(`
intents:
  - intent: doctor_inquiry
    patterns:
      - {text: "visit", weight: 0.8}
  - intent: booking_appointment
    patterns:
      - {text: "visit", weight: 0.8}
`))
	require.NoError(t, err)

	ic := NewIntentClassifier(table)
	assert.Equal(t, models.IntentDoctorInquiry, ic.ClassifyIntent("a visit please"))
}

func TestClassifyIntent_SubstringContainment(t *testing.T) {
	ic := newTestClassifier(t)

	// "hi" is matched inside "this"; the matching has no word boundaries.
	assert.Equal(t, models.IntentGreeting, ic.ClassifyIntent("this"))
}

func TestClassifyIntent_AlwaysReturnsKnownIntent(t *testing.T) {
	ic := newTestClassifier(t)

	inputs := []string{"", " ", "؟؟؟", "12345", "book cancel help bye", "☃"}
	for _, in := range inputs {
		assert.True(t, ic.ClassifyIntent(in).IsValid(), "input %q", in)
	}
}

func TestDetermineIntent_UsesEmbeddedTable(t *testing.T) {
	assert.Equal(t, models.IntentBookingAppointment, DetermineIntent("احجز لي موعد"))
	assert.Equal(t, models.IntentGeneralInquiry, DetermineIntent("xyz completely unrelated gibberish"))
}
