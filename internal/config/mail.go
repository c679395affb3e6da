package config

import "os"

// MailConfig configures the SMTP relay used by the notification worker.
// GMAIL_USER and GMAIL_APP_PASSWORD are honoured as fallbacks so an
// existing deployment's environment keeps working.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	FromAddr string
	TLS      bool
}

func LoadMailConfig() MailConfig {
	user := envStr("MAIL_USER", os.Getenv("GMAIL_USER"))
	return MailConfig{
		Host:     envStr("SMTP_HOST", "smtp.gmail.com"),
		Port:     envInt("SMTP_PORT", 587),
		Username: user,
		Password: envStr("MAIL_PASSWORD", os.Getenv("GMAIL_APP_PASSWORD")),
		FromName: envStr("MAIL_FROM_NAME", "Shastra Veg Restaurant"),
		FromAddr: envStr("MAIL_FROM", user),
		TLS:      envBool("SMTP_TLS", true),
	}
}

// Configured reports whether enough settings are present to send mail.
func (m MailConfig) Configured() bool {
	return m.Host != "" && m.FromAddr != ""
}
