package models

// ClinicInfo holds the clinic facts interpolated into assistant replies.
type ClinicInfo struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	EmergencyNumber string `json:"emergency_number"`
	Hours           string `json:"hours"`
}

// DefaultClinicInfo is used when no clinic settings are configured.
func DefaultClinicInfo() ClinicInfo {
	return ClinicInfo{
		Name:            "عيادة الرعاية الصحية",
		Address:         "123 شارع المركز الطبي",
		Phone:           "920000000",
		EmergencyNumber: "997",
		Hours:           "السبت - الخميس: 8 صباحاً - 10 مساءً، الجمعة: 4 مساءً - 10 مساءً",
	}
}
