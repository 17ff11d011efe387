package services

import (
	"fmt"
	"strings"

	"clinic-assistant/models"
)

// ResponseGenerator turns an intent and the current conversation context
// into a reply. It is stateless apart from the clinic facts it quotes.
type ResponseGenerator struct {
	clinic models.ClinicInfo
}

func NewResponseGenerator(clinic models.ClinicInfo) *ResponseGenerator {
	return &ResponseGenerator{clinic: clinic}
}

// GenerateResponse returns the reply text for intent given ctx.
func (g *ResponseGenerator) GenerateResponse(intent models.MessageIntent, ctx models.ConversationContext) string {
	switch intent {
	case models.IntentBookingAppointment:
		return g.bookingResponse(ctx)

	case models.IntentCancelAppointment:
		if ctx.AppointmentDate != "" {
			when := ctx.AppointmentDate
			if ctx.AppointmentTime != "" {
				when += " الساعة " + ctx.AppointmentTime
			}
			return fmt.Sprintf("هل تريد إلغاء موعدك يوم %s؟ يرجى تأكيد الإلغاء.", when)
		}
		return "يمكنني مساعدتك في إلغاء موعدك. يرجى تزويدي بتاريخ الموعد أو رقم الحجز."

	case models.IntentCheckHours:
		return fmt.Sprintf("ساعات عمل %s: %s. قسم الطوارئ يعمل على مدار الساعة.", g.clinic.Name, g.clinic.Hours)

	case models.IntentBillingInquiry:
		return fmt.Sprintf("يمكنك الاطلاع على فواتيرك ودفعها من خلال بوابة المريض. "+
			"للاستفسار عن تكلفة خدمة معينة، يرجى الاتصال بقسم الحسابات على %s.", g.clinic.Phone)

	case models.IntentMedicalRecords:
		return "يمكنك الوصول إلى سجلك الطبي من خلال بوابة المريض في قسم \"السجلات الطبية\". " +
			"هل تحتاج نسخة من تقرير طبي معين؟"

	case models.IntentSymptomInquiry:
		if len(ctx.ReportedSymptoms) > 0 {
			return fmt.Sprintf("أفهم أنك تعاني من: %s. أنصحك بمراجعة الطبيب لتقييم حالتك بدقة. "+
				"هل تريد حجز موعد؟ إذا كانت الأعراض شديدة، توجه إلى الطوارئ فوراً.",
				strings.Join(ctx.ReportedSymptoms, "، "))
		}
		return "أنا آسف لسماع أنك لا تشعر بخير. هل يمكنك وصف الأعراض التي تعاني منها؟"

	case models.IntentDoctorInquiry:
		return g.doctorResponse(ctx)

	case models.IntentInsuranceInquiry:
		return "نتعامل مع معظم شركات التأمين الرئيسية. يرجى إحضار بطاقة التأمين عند زيارتك، " +
			"ويمكنك التحقق من تغطيتك عبر بوابة المريض."

	case models.IntentMedicationInquiry:
		return "لطلب إعادة صرف دواء أو الاستفسار عن وصفة طبية، يرجى التواصل مع طبيبك عبر بوابة المريض " +
			"أو زيارة صيدلية العيادة. لا تغير جرعة أي دواء دون استشارة الطبيب."

	case models.IntentEmergencyInquiry:
		return fmt.Sprintf("⚠️ إذا كانت حالتك طارئة، اتصل بالإسعاف فوراً على %s أو توجه إلى أقرب قسم طوارئ. "+
			"قسم الطوارئ لدينا يعمل على مدار 24 ساعة.", g.clinic.EmergencyNumber)

	case models.IntentCovidInquiry:
		return "نوفر فحص PCR والفحص السريع لكورونا ولقاحات كوفيد-19. يمكنك حجز موعد للفحص أو اللقاح، " +
			"وإذا كانت لديك أعراض يرجى ارتداء الكمامة عند الحضور."

	case models.IntentTelemedicineInquiry:
		return "نوفر خدمة الاستشارة عن بعد عبر مكالمات الفيديو مع أطبائنا. هل تريد حجز استشارة عن بعد؟"

	case models.IntentLabResultsInquiry:
		return "تظهر نتائج التحاليل في بوابة المريض عادة خلال 24 إلى 48 ساعة. " +
			"سيتواصل معك الطبيب إذا كانت هناك نتائج تحتاج إلى متابعة."

	case models.IntentSpecialistReferral:
		if specialty := knownSpecialty(ctx); specialty != "" {
			return fmt.Sprintf("سأساعدك في طلب تحويل إلى أخصائي %s. يحتاج التحويل إلى موافقة طبيبك المعالج.", specialty)
		}
		return "لطلب تحويل إلى أخصائي، يحتاج طبيبك المعالج إلى إصدار التحويل. ما التخصص الذي تحتاجه؟"

	case models.IntentAuthorizationInquiry:
		return "لطلب موافقة التأمين المسبقة، نحتاج إلى تقرير الطبيب وبيانات بطاقة التأمين. " +
			"تستغرق الموافقة عادة من 2 إلى 5 أيام عمل."

	case models.IntentGreeting:
		return fmt.Sprintf("مرحباً بك في %s! أنا المساعد الذكي، كيف يمكنني مساعدتك اليوم؟", g.clinic.Name)

	case models.IntentThanks:
		return "العفو! سعيد بمساعدتك. هل هناك شيء آخر يمكنني مساعدتك به؟"

	case models.IntentGoodbye:
		return "مع السلامة! نتمنى لك دوام الصحة والعافية."

	case models.IntentHelp:
		return "يمكنني مساعدتك في:\n" +
			"• حجز المواعيد وإلغائها\n" +
			"• معلومات ساعات العمل\n" +
			"• الاستفسار عن الفواتير والتأمين\n" +
			"• نتائج التحاليل والسجلات الطبية\n" +
			"• معلومات عن الأطباء والتخصصات\n" +
			"• حالات الطوارئ\n" +
			"كيف يمكنني مساعدتك؟"

	default:
		return g.generalResponse(intent, ctx)
	}
}

// bookingResponse asks for whatever the booking still lacks, most specific
// case first.
func (g *ResponseGenerator) bookingResponse(ctx models.ConversationContext) string {
	specialty, date, clock := ctx.Specialty, ctx.AppointmentDate, ctx.AppointmentTime

	switch {
	case specialty != "" && date != "" && clock != "":
		withDoctor := ""
		if ctx.DoctorName != "" {
			withDoctor = " مع د. " + ctx.DoctorName
		}
		return fmt.Sprintf("ممتاز! سأحجز لك موعداً في قسم %s%s يوم %s الساعة %s. هل تريد تأكيد الحجز؟",
			specialty, withDoctor, date, clock)
	case specialty != "" && date != "":
		return fmt.Sprintf("رائع! موعدك في قسم %s يوم %s. ما هو الوقت المناسب لك؟", specialty, date)
	case specialty != "":
		return fmt.Sprintf("رائع! لحجز موعد في قسم %s، ما هو اليوم والوقت المناسبان لك؟", specialty)
	case date != "" && clock != "":
		return fmt.Sprintf("حسناً، الموعد يوم %s الساعة %s. ما هو التخصص الذي تحتاجه؟", date, clock)
	case date != "":
		return fmt.Sprintf("حسناً، الموعد يوم %s. ما هو التخصص الذي تحتاجه؟ وما الوقت المناسب لك؟", date)
	case clock != "":
		return fmt.Sprintf("حسناً، الموعد الساعة %s. ما هو التخصص الذي تحتاجه؟ وأي يوم يناسبك؟", clock)
	default:
		return "بكل سرور! سأساعدك في حجز موعد. ما هو التخصص الذي تحتاجه؟"
	}
}

func (g *ResponseGenerator) doctorResponse(ctx models.ConversationContext) string {
	name := ctx.DoctorName
	if name == "" {
		name = ctx.Entities.DoctorName
	}
	if name != "" {
		return fmt.Sprintf("د. %s من أطبائنا المتميزين. هل تريد حجز موعد معه؟", name)
	}
	if specialty := knownSpecialty(ctx); specialty != "" {
		return fmt.Sprintf("لدينا نخبة من الأطباء في تخصص %s. هل تريد الاطلاع على جدولهم أو حجز موعد؟", specialty)
	}
	return "لدينا فريق من الأطباء في مختلف التخصصات: طب عام، أمراض قلب، أطفال، جلدية، عظام، نساء وتوليد وغيرها. " +
		"أي تخصص تبحث عنه؟"
}

// generalResponse picks up an unfinished booking or symptom thread before
// falling back to a generic prompt.
func (g *ResponseGenerator) generalResponse(intent models.MessageIntent, ctx models.ConversationContext) string {
	switch ctx.PreviousIntent(intent) {
	case models.IntentBookingAppointment:
		if ctx.BookingInProgress {
			return "لنكمل حجز موعدك. " + g.bookingResponse(ctx)
		}
	case models.IntentSymptomInquiry:
		if len(ctx.ReportedSymptoms) > 0 {
			return fmt.Sprintf("بخصوص الأعراض التي ذكرتها (%s)، أنصحك بحجز موعد مع طبيب مختص لتقييم حالتك. "+
				"هل تريد أن أساعدك في الحجز؟", strings.Join(ctx.ReportedSymptoms, "، "))
		}
	}
	return "شكراً لتواصلك معنا. لم أفهم طلبك تماماً، هل يمكنك توضيح ما تحتاجه؟ " +
		"يمكنني مساعدتك في حجز المواعيد وساعات العمل والفواتير والمزيد."
}

func knownSpecialty(ctx models.ConversationContext) string {
	if ctx.Specialty != "" {
		return ctx.Specialty
	}
	return ctx.Entities.Specialty
}
