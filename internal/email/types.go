package email

// Message is a plain transactional email.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Provider sends transactional email. The dispatcher uses it as the
// escalation fallback when a CRITICAL notification finds no live
// session; tests substitute a mock.
type Provider interface {
	Send(msg *Message) error
}
