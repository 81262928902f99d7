package notify

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"arcane/models"

	"gopkg.in/gomail.v2"
)

// Mailer sends customer notifications over SMTP. Every send is best effort:
// failures are logged, never returned to the order flow.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer reads SMTP_* from the environment. With no SMTP_HOST configured
// the mailer is disabled and sends become logged no-ops, which keeps local
// development working without a mail server.
func NewMailer() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("SMTP_HOST not set; email notifications disabled")
		return &Mailer{}
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	return &Mailer{
		dialer: gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS")),
		from:   from,
	}
}

// Send delivers one HTML email. Failures are logged only.
func (m *Mailer) Send(to, subject, html string) {
	if m == nil || m.dialer == nil || to == "" {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Println("Email error:", err)
	}
}

// OrderConfirmed is sent after a card payment reconciles into an order.
func (m *Mailer) OrderConfirmed(o *models.Order, to string) {
	html := fmt.Sprintf(`
		<h2>Order Confirmed!</h2>
		<p>Thank you for your purchase from Arcane.</p>
		<p><strong>Order ID:</strong> %s</p>
		<p><strong>Total Paid:</strong> $%.2f</p>
		<p>We'll notify you when your items are shipped.</p>
	`, o.ID, o.TotalPrice)
	m.Send(to, "Arcane - Order Confirmation", html)
}

// OrderPlacedCOD is sent when a cash-on-delivery order is placed.
func (m *Mailer) OrderPlacedCOD(o *models.Order, to string) {
	html := fmt.Sprintf(`
		<h2>Your Order Has Been Placed! (Cash on Delivery)</h2>
		<p>Thank you for your purchase from Arcane.</p>
		<p><strong>Order ID:</strong> %s</p>
		<p><strong>Total to Pay:</strong> $%.2f</p>
		<p>Please have the exact amount ready upon delivery. Thank you!</p>
	`, o.ID, o.TotalPrice)
	m.Send(to, "Arcane - COD Order Confirmation", html)
}

// StatusChanged mails the owner about an admin status transition. Only the
// transitions a customer cares about produce mail: delivered, and paid while
// still undelivered ("in transit").
func (m *Mailer) StatusChanged(o *models.Order, to, name string, upd models.StatusUpdate) {
	if name == "" {
		name = "Customer"
	}

	var subject, html string
	switch {
	case upd.IsDelivered != nil && *upd.IsDelivered:
		subject = "Arcane - Your Order Has Been Delivered!"
		html = fmt.Sprintf(`
			<h2>Your order has been delivered, %s!</h2>
			<p><strong>Order ID:</strong> #%s</p>
			<p><strong>Total Paid:</strong> $%.2f</p>
			<p>We hope you enjoy your purchase! Please leave a review on our website.</p>
		`, name, o.ShortRef(), o.TotalPrice)
	case upd.IsPaid != nil && *upd.IsPaid && !o.IsDelivered:
		subject = "Arcane - Your Order Is Now In Transit"
		html = fmt.Sprintf(`
			<h2>Great news, %s! Your order is on its way.</h2>
			<p><strong>Order ID:</strong> #%s</p>
			<p><strong>Total:</strong> $%.2f</p>
			<p>Your order has been confirmed and is now in transit. We'll notify you when it's delivered.</p>
		`, name, o.ShortRef(), o.TotalPrice)
	default:
		return
	}

	m.Send(to, subject, html)
}
