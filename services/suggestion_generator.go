package services

import "clinic-assistant/models"

var (
	specialtyOptions   = []string{"طب عام", "أمراض قلب", "أطفال", "جلدية", "عظام", "نساء وتوليد"}
	dateOptions        = []string{"اليوم", "غداً", "بعد غد", "الأسبوع القادم"}
	timeOptions        = []string{"9:00 صباحاً", "11:00 صباحاً", "2:00 مساءً", "5:00 مساءً"}
	confirmOptions     = []string{"تأكيد الحجز", "تغيير الموعد", "إلغاء الحجز"}
	defaultSuggestions = []string{"حجز موعد", "ساعات العمل", "مساعدة"}
)

var suggestionTable = map[models.MessageIntent][]string{
	models.IntentBookingAppointment:   specialtyOptions,
	models.IntentCancelAppointment:    {"تأكيد الإلغاء", "حجز موعد جديد", "التحدث مع موظف"},
	models.IntentCheckHours:           {"حجز موعد", "موقع العيادة", "رقم التواصل"},
	models.IntentBillingInquiry:       {"عرض الفواتير", "طرق الدفع", "التأمين الصحي"},
	models.IntentMedicalRecords:       {"نتائج التحاليل", "طلب تقرير طبي", "حجز موعد"},
	models.IntentSymptomInquiry:       {"حجز موعد", "حالة طارئة", "التحدث مع طبيب"},
	models.IntentDoctorInquiry:        {"طب عام", "أمراض قلب", "أطفال", "حجز موعد"},
	models.IntentInsuranceInquiry:     {"شركات التأمين المعتمدة", "موافقة التأمين", "حجز موعد"},
	models.IntentMedicationInquiry:    {"إعادة صرف دواء", "موقع الصيدلية", "التحدث مع طبيب"},
	models.IntentEmergencyInquiry:     {"اتصل بالإسعاف", "موقع الطوارئ", "أعراض أخرى"},
	models.IntentCovidInquiry:         {"حجز فحص PCR", "حجز لقاح", "أعراض كورونا"},
	models.IntentTelemedicineInquiry:  {"حجز استشارة عن بعد", "كيف تعمل الخدمة", "حجز موعد حضوري"},
	models.IntentLabResultsInquiry:    {"عرض النتائج", "حجز موعد لمناقشة النتائج", "السجل الطبي"},
	models.IntentSpecialistReferral:   {"طلب تحويل", "قائمة الأخصائيين", "حجز موعد"},
	models.IntentAuthorizationInquiry: {"متطلبات الموافقة", "حالة الطلب", "التأمين الصحي"},
	models.IntentGreeting:             {"حجز موعد", "ساعات العمل", "الأطباء المتاحون", "حالة طارئة"},
	models.IntentThanks:               {"حجز موعد", "مساعدة أخرى"},
	models.IntentGoodbye:              {"بدء محادثة جديدة"},
	models.IntentHelp:                 {"حجز موعد", "إلغاء موعد", "ساعات العمل", "الفواتير", "نتائج التحاليل"},
	models.IntentGeneralInquiry:       defaultSuggestions,
}

// GenerateSuggestions returns follow-up options for intent. While a booking
// is in progress the options walk through the next missing booking field.
// The returned slice is owned by the caller.
func GenerateSuggestions(intent models.MessageIntent, ctx models.ConversationContext) []string {
	if intent == models.IntentBookingAppointment && ctx.BookingInProgress {
		switch {
		case ctx.Specialty == "":
			return clone(specialtyOptions)
		case ctx.AppointmentDate == "":
			return clone(dateOptions)
		case ctx.AppointmentTime == "":
			return clone(timeOptions)
		default:
			return clone(confirmOptions)
		}
	}

	if s, ok := suggestionTable[intent]; ok {
		return clone(s)
	}
	return clone(defaultSuggestions)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
