package service

import "strings"

// InteractiveMenu is shown whenever a message cannot be answered directly.
const InteractiveMenu = "I can help you with the following topics. Reply with a number:\n" +
	"1. My appointments\n" +
	"2. Clinic hours & location\n" +
	"3. Doctors & departments\n" +
	"4. Lab results\n" +
	"5. Payment methods\n" +
	"6. Prescriptions & refills\n" +
	"7. Insurance & billing\n" +
	"8. General health tips\n" +
	"9. Contact & emergencies\n" +
	"You can also type your question in your own words."

const menuCategory = "Menu"

type MenuReply struct {
	Digit   byte
	Reply   string
	ScopeID *int64
	Topic   string
}

// menuEntry is one shortcut. A non-empty guestReply replaces reply for
// callers who are not logged in.
type menuEntry struct {
	topic      string
	scopeID    int64
	reply      string
	guestReply string
}

var menuEntries = map[byte]menuEntry{
	'1': {
		topic:   "My appointments",
		scopeID: 1,
		reply: "Your upcoming appointments are listed under \"My Appointments\" in your patient portal.\n" +
			"You can reschedule or cancel a visit up to 24 hours before it starts.",
		guestReply: "To view or manage your appointments, please log in to your patient account first.\n" +
			"New patients can book a first visit by calling the front desk.",
	},
	'2': {
		topic:   "Clinic hours & location",
		scopeID: 5,
		reply: "Our clinic is open:\n" +
			"Monday to Friday: 08:00 - 20:00\n" +
			"Saturday: 09:00 - 14:00\n" +
			"Sunday and public holidays: closed\n" +
			"The address and map are on the Contact page.",
	},
	'3': {
		topic:   "Doctors & departments",
		scopeID: 8,
		reply: "We have general practice, pediatrics, cardiology, dermatology and laboratory departments.\n" +
			"The Doctors page lists every physician with their schedule.",
	},
	'4': {
		topic:   "Lab results",
		scopeID: 12,
		reply: "Lab results are published in the patient portal as soon as they are validated, usually within 2 working days.\n" +
			"Your doctor will contact you if any result needs follow-up.",
	},
	'5': {
		topic:   "Payment methods",
		scopeID: 17,
		reply: "We accept the following payment methods:\n" +
			"- Cash at the front desk\n" +
			"- Credit and debit cards\n" +
			"- Bank transfer\n" +
			"- Online payment through the patient portal",
	},
	'6': {
		topic:   "Prescriptions & refills",
		scopeID: 20,
		reply: "Active prescriptions are shown in the patient portal.\n" +
			"To request a refill, contact your doctor at least 3 days before you run out.",
	},
	'7': {
		topic:   "Insurance & billing",
		scopeID: 23,
		reply: "We work with most major insurance providers.\n" +
			"Bring your insurance card to every visit. Billing questions are handled by the front desk.",
	},
	'8': {
		topic:   "General health tips",
		scopeID: 26,
		reply: "Drink enough water, sleep 7 to 9 hours, stay active for at least 30 minutes a day\n" +
			"and keep up with your routine check-ups.",
	},
	'9': {
		topic:   "Contact & emergencies",
		scopeID: 30,
		reply: "Front desk: call the clinic number on the Contact page during opening hours.\n" +
			"In a medical emergency, call your local emergency number immediately.",
	},
}

type MenuResolver struct{}

func NewMenuResolver() *MenuResolver {
	return &MenuResolver{}
}

// Resolve returns the canned reply for a lone digit 1-9 and nil for
// anything else. Multi-digit input and "0" are not shortcuts.
func (r *MenuResolver) Resolve(message string, isLoggedIn bool) *MenuReply {
	digit, ok := shortcutDigit(message)
	if !ok {
		return nil
	}

	entry, ok := menuEntries[digit]
	if !ok {
		return &MenuReply{Digit: digit, Reply: InteractiveMenu}
	}

	reply := entry.reply
	if entry.guestReply != "" && !isLoggedIn {
		reply = entry.guestReply
	}
	scopeID := entry.scopeID
	return &MenuReply{
		Digit:   digit,
		Reply:   reply,
		ScopeID: &scopeID,
		Topic:   entry.topic,
	}
}

func shortcutDigit(message string) (byte, bool) {
	trimmed := strings.TrimSpace(message)
	if len(trimmed) != 1 || trimmed[0] < '1' || trimmed[0] > '9' {
		return 0, false
	}
	return trimmed[0], true
}
