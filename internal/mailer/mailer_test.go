package mailer

import "testing"

func TestLogMailer_Send(t *testing.T) {
	m := NewLogMailer("[Test]")
	if err := m.Send("user@example.com", "Confirm Your Account", "<p>hi</p>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestNewSMTPMailer(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", 587, "user", "pass", "OBlog <oblog@example.com>", "[OBlog]")
	if m.host != "smtp.example.com" || m.port != 587 {
		t.Errorf("dialer settings not stored: %s:%d", m.host, m.port)
	}
}
