package smtp

// Config contains SMTP relay parameters.
// The sender mailbox doubles as the login, as with Gmail app passwords.
type Config struct {
	Host     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`        // 587 for STARTTLS
	Username string `envconfig:"EMAIL_SENDER" required:"true"`   // mailbox and login
	Password string `envconfig:"EMAIL_PASSWORD" required:"true"` // app password
	FromName string `envconfig:"EMAIL_SENDER_NAME"`              // display name (optional)
	TLS      bool   `envconfig:"SMTP_TLS" default:"true"`        // require STARTTLS
	Insecure bool   `envconfig:"SMTP_INSECURE" default:"false"`  // skip certificate verification
}
