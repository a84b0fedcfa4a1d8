package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/tedxecu/registration-api/internal/models"
)

const (
	subjectRegistrationReceived = "TEDxECU Registration Confirmation - Payment Received"
	subjectTicketReady          = "🎫 Your TEDxECU Ticket is Ready!"
)

var confirmationEmailTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #dc2626; margin-bottom: 20px;">TED<span style="color: #dc2626;">x</span>ECU</h1>
  <h2 style="color: #374151; margin-bottom: 20px;">Registration Confirmation</h2>

  <p>Dear {{.Registration.Name}},</p>

  <p>Thank you for registering for {{.Event.Name}}! We have received your registration and payment proof.</p>

  <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #374151; margin-top: 0;">Your Registration Details:</h3>
    <p><strong>Name:</strong> {{.Registration.Name}}</p>
    <p><strong>Email:</strong> {{.Registration.Email}}</p>
    <p><strong>Phone:</strong> {{.Registration.Phone}}</p>
    <p><strong>University:</strong> {{.Registration.University}}</p>
  </div>

  <div style="background: #fef3c7; padding: 15px; border-radius: 8px; border-left: 4px solid #f59e0b;">
    <p style="margin: 0; color: #92400e;">
      <strong>Next Steps:</strong> Our team will review your payment proof and confirm your registration within 24-48 hours. You will receive your ticket via email once confirmed.
    </p>
  </div>

  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb;">
    <p style="color: #6b7280; font-size: 14px; margin: 0;">
      Thank you for joining {{.Event.Name}} - Ideas Worth Spreading!
    </p>
  </div>
</div>
`))

var ticketEmailTmpl = template.Must(template.New("ticket").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: #dc2626; font-size: 36px; margin: 0;">TED<span style="color: #dc2626;">x</span>ECU</h1>
    <p style="color: #6b7280; margin: 5px 0;">x = independently organized TED event</p>
  </div>

  <div style="background: linear-gradient(135deg, #dc2626, #b91c1c); color: white; padding: 30px; border-radius: 12px; text-align: center; margin-bottom: 30px;">
    <h2 style="margin: 0 0 10px 0; font-size: 28px;">🎉 Your ticket is ready!</h2>
    <p style="margin: 0; opacity: 0.9;">Get ready for an amazing experience!</p>
  </div>

  <p style="font-size: 18px; color: #374151;">Dear {{.Registration.Name}},</p>
  <p style="color: #6b7280; line-height: 1.6;">
    Your ticket for {{.Event.Name}} is confirmed and ready!
  </p>

  <div style="background: #f9fafb; padding: 25px; border-radius: 8px; margin: 25px 0; border-left: 4px solid #dc2626;">
    <h3 style="color: #374151; margin-top: 0;">🎫 Your Ticket Details</h3>
    <p><strong>Name:</strong> {{.Registration.Name}}</p>
    <p><strong>Email:</strong> {{.Registration.Email}}</p>
    <p><strong>Ticket ID:</strong> <span style="color: #dc2626; font-weight: bold;">{{.TicketID}}</span></p>
    <p><strong>Date:</strong> {{.Event.Date}}</p>
    <p><strong>Time:</strong> {{.Event.Time}}</p>
    <p><strong>Venue:</strong> {{.Event.Venue}}</p>
    <p><strong>Seat:</strong> {{.Event.Seat}}</p>
  </div>

  <div style="background: #fef3c7; padding: 20px; border-radius: 8px; margin: 25px 0;">
    <h4 style="color: #92400e; margin-top: 0;">📱 Important Instructions:</h4>
    <ul style="color: #92400e; margin: 0; padding-left: 20px;">
      <li>Present your Ticket ID ({{.TicketID}}) at the venue</li>
      <li>Arrive 30 minutes before the event starts</li>
      <li>Bring a valid ID for verification</li>
    </ul>
  </div>
</div>
`))

type emailTemplateData struct {
	Registration *models.Registration
	Event        models.EventInfo
	TicketID     string
}

func renderConfirmationEmail(reg *models.Registration, event models.EventInfo) (string, error) {
	var buf bytes.Buffer
	if err := confirmationEmailTmpl.Execute(&buf, emailTemplateData{Registration: reg, Event: event}); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return buf.String(), nil
}

func renderTicketEmail(reg *models.Registration, event models.EventInfo, ticketID string) (string, error) {
	var buf bytes.Buffer
	if err := ticketEmailTmpl.Execute(&buf, emailTemplateData{Registration: reg, Event: event, TicketID: ticketID}); err != nil {
		return "", fmt.Errorf("render ticket email: %w", err)
	}
	return buf.String(), nil
}
