package integrations

import (
	"context"
	"fmt"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const orgName = "RentFlow"

type EmailMessage struct {
	ToName    string
	ToEmail   string
	Subject   string
	PlainText string
	HTML      string
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

/* ---------- SendGrid ---------- */

type sendgridEmailSender struct {
	client    *sendgrid.Client
	fromEmail string
	sandbox   bool
}

func NewSendGridEmailSender(apiKey, fromEmail string, sandbox bool) EmailSender {
	return &sendgridEmailSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		sandbox:   sandbox,
	}
}

func (s *sendgridEmailSender) SendEmail(ctx context.Context, m EmailMessage) error {
	from := mail.NewEmail(orgName, s.fromEmail)
	to := mail.NewEmail(m.ToName, m.ToEmail)
	msg := mail.NewSingleEmail(from, m.Subject, to, m.PlainText, m.HTML)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{Enable: utils.Ptr(false)},
	}
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

/* ---------- Twilio ---------- */

type twilioSMSSender struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewTwilioSMSSender(accountSID, authToken, fromPhone string) SMSSender {
	return &twilioSMSSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		fromPhone: fromPhone,
	}
}

func (s *twilioSMSSender) SendSMS(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.fromPhone)
	params.SetBody(body)
	_, err := s.client.Api.CreateMessage(params)
	return err
}

/* ---------- no-op fallbacks ---------- */

type NoopEmailSender struct{}

func (NoopEmailSender) SendEmail(_ context.Context, m EmailMessage) error {
	utils.Logger.Debugf("Email disabled, skipping %q to %s", m.Subject, m.ToEmail)
	return nil
}

type NoopSMSSender struct{}

func (NoopSMSSender) SendSMS(_ context.Context, to, _ string) error {
	utils.Logger.Debugf("SMS disabled, skipping message to %s", to)
	return nil
}
