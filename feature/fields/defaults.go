package fields

// BuiltinFields are computed fields that are always available for
// configuration even though they never appear upstream.
var BuiltinFields = map[string]string{
	"guest_phone_last4": "Guest Phone (Last 4 Digits)",
}

// DefaultFields are common upstream fields offered for configuration before
// any reservation has been discovered for a property.
var DefaultFields = map[string]string{
	"guestName":            "Guest Name",
	"guestFirstName":       "Guest First Name",
	"guestLastName":        "Guest Last Name",
	"guestEmail":           "Guest Email",
	"guestPhone":           "Guest Phone",
	"guestCountry":         "Guest Country",
	"notes":                "Booking Notes",
	"status":               "Booking Status",
	"sourceName":           "Booking Source",
	"startDate":            "Check-in Date",
	"endDate":              "Check-out Date",
	"dateCreated":          "Date Created",
	"adults":               "Number of Adults",
	"children":             "Number of Children",
	"balance":              "Balance Due",
	"total":                "Total Amount",
	"paid":                 "Amount Paid",
	"roomTypeName":         "Room Type",
	"roomName":             "Room Name",
	"confirmationCode":     "Confirmation Code",
	"estimatedArrivalTime": "Estimated Arrival Time",
}
