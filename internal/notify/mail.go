package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"restaurant-booking/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 500px; margin: auto;">
  <h2>Booking Confirmed</h2>
  <p>Hi <strong>{{if .RecipientName}}{{.RecipientName}}{{else}}there{{end}}</strong>, your table has been booked!</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td>Restaurant</td><td><strong>{{.RestaurantName}}</strong></td></tr>
    <tr><td>Date</td><td>{{.Date}}</td></tr>
    <tr><td>Time</td><td>{{.Time}}</td></tr>
    <tr><td>Guests</td><td>{{.Seats}} persons</td></tr>
    <tr><td>Total Amount</td><td>{{printf "%.2f" .TotalAmount}}</td></tr>
    <tr><td>Confirmation Code</td><td><strong>{{.ConfirmationCode}}</strong></td></tr>
  </table>
  <p>Please show this confirmation code at the restaurant.</p>
</div>
`))

// MailNotifier sends the confirmation email over SMTP.
type MailNotifier struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func NewMailNotifier(config utils.EmailConfig, log *zap.Logger) *MailNotifier {
	return &MailNotifier{
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		from:   config.From,
		log:    log.With(zap.String("notifier", "smtp")),
	}
}

func RenderConfirmation(msg Notification) (string, error) {
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, msg); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return body.String(), nil
}

func (n *MailNotifier) BookingConfirmed(ctx context.Context, msg Notification) error {
	if msg.RecipientEmail == "" {
		n.log.Debug("No recipient, skipping confirmation email",
			zap.String("confirmation_code", msg.ConfirmationCode))
		return nil
	}

	body, err := RenderConfirmation(msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.RecipientEmail)
	m.SetHeader("Subject", "Booking Confirmed - "+msg.RestaurantName)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send confirmation %s to %s: %w", msg.ConfirmationCode, msg.RecipientEmail, err)
	}

	n.log.Info("Confirmation email sent",
		zap.String("confirmation_code", msg.ConfirmationCode),
		zap.String("recipient", msg.RecipientEmail),
	)
	return nil
}
