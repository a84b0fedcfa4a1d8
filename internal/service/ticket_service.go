package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"html/template"

	"go.uber.org/zap"

	"github.com/tedxecu/registration-api/internal/models"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
)

var ticketPageTmpl = template.Must(template.New("ticketPage").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>{{.Event.Name}} Ticket - {{.Registration.Name}}</title>
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body {
      margin: 0;
      padding: 20px;
      background: #f0f0f0;
      display: flex;
      flex-direction: column;
      justify-content: center;
      align-items: center;
      min-height: 100vh;
      font-family: Arial, sans-serif;
    }
    .ticket {
      width: 900px;
      max-width: 100%;
      background: linear-gradient(135deg, #0f172a 0%, #1e293b 50%, #334155 100%);
      color: #ffffff;
      border-radius: 20px;
      border: 1px solid #334155;
      box-shadow: 0 25px 50px rgba(0, 0, 0, 0.5);
      overflow: hidden;
    }
    .ticket-header {
      background: linear-gradient(90deg, #ef4444 0%, #dc2626 100%);
      display: flex;
      align-items: center;
      justify-content: space-between;
      padding: 25px 40px;
    }
    .ticket-header .brand {
      font-size: 42px;
      font-weight: 900;
      letter-spacing: -1px;
    }
    .ticket-header .brand span { color: #fbbf24; }
    .ticket-header .tagline {
      font-size: 14px;
      color: rgba(255, 255, 255, 0.9);
    }
    .ticket-header .theme {
      text-align: right;
      font-style: italic;
      color: rgba(255, 255, 255, 0.8);
    }
    .ticket-body {
      display: flex;
      gap: 40px;
      padding: 40px;
    }
    .panel {
      flex: 1;
      background: rgba(255, 255, 255, 0.05);
      border: 1px solid rgba(255, 255, 255, 0.1);
      border-radius: 16px;
      padding: 30px;
    }
    .panel h3 {
      margin-top: 0;
      font-size: 16px;
      color: #ef4444;
      text-transform: uppercase;
      letter-spacing: 1px;
    }
    .label {
      font-size: 12px;
      color: #94a3b8;
      text-transform: uppercase;
      letter-spacing: 0.5px;
      margin-bottom: 5px;
    }
    .value { font-size: 18px; font-weight: 600; margin-bottom: 20px; }
    .ticket-id {
      background: linear-gradient(135deg, #ef4444, #dc2626);
      border-radius: 12px;
      padding: 15px;
    }
    .ticket-id .number {
      font-size: 28px;
      font-weight: 900;
      font-family: 'Courier New', monospace;
      letter-spacing: 2px;
    }
    .qr {
      background: rgba(255, 255, 255, 0.95);
      border-radius: 16px;
      padding: 20px;
      text-align: center;
      color: #374151;
      margin-top: 20px;
    }
    .ticket-footer {
      text-align: center;
      font-size: 11px;
      color: #64748b;
      padding: 0 40px 20px;
    }
    .actions {
      margin-top: 20px;
      display: flex;
      gap: 10px;
      justify-content: center;
    }
    .button {
      background: #dc2626;
      color: white;
      border: none;
      padding: 10px 20px;
      border-radius: 5px;
      cursor: pointer;
      font-weight: bold;
      text-decoration: none;
    }
    .button.outline {
      background: transparent;
      border: 2px solid #dc2626;
      color: #dc2626;
    }
    h1 { color: #dc2626; text-align: center; margin-bottom: 20px; }
    @media print {
      .no-print { display: none; }
      body { padding: 0; background: white; }
    }
  </style>
</head>
<body>
  <h1 class="no-print">Your {{.Event.Name}} Ticket</h1>
  <div class="ticket">
    <div class="ticket-header">
      <div>
        <div class="brand">TED<span style="color: white;">x</span><span>ECU</span></div>
        <div class="tagline">x = independently organized TED event</div>
      </div>
      <div class="theme">Ideas Worth Spreading</div>
    </div>
    <div class="ticket-body">
      <div class="panel">
        <h3>Attendee Information</h3>
        <div class="label">Full Name</div>
        <div class="value">{{.Registration.Name}}</div>
        <div class="label">University</div>
        <div class="value">{{.Registration.University}}</div>
        <div class="label">Email</div>
        <div class="value">{{.Registration.Email}}</div>
        <div class="ticket-id">
          <div class="label" style="color: rgba(255,255,255,0.8);">Ticket ID</div>
          <div class="number">{{.TicketID}}</div>
        </div>
      </div>
      <div class="panel">
        <h3>Event Details</h3>
        <div class="label">Date</div>
        <div class="value">{{.Event.Date}}</div>
        <div class="label">Time</div>
        <div class="value">{{.Event.Time}}</div>
        <div class="label">Venue</div>
        <div class="value">{{.Event.Venue}}</div>
        <div class="label">Admission</div>
        <div class="value">{{.Event.Seat}}</div>
        <div class="qr">
          <div class="label" style="color: #374151; font-weight: 600;">Scan for Entry</div>
          <img src="https://api.qrserver.com/v1/create-qr-code/?size=120x120&amp;data={{.TicketID}}&amp;bgcolor=ffffff&amp;color=000000" width="120" height="120" alt="QR Code" />
        </div>
      </div>
    </div>
    <div class="ticket-footer">
      This ticket is valid for one person only. Present this ticket and a valid ID at the venue.
    </div>
  </div>
  <div class="actions no-print">
    <button onclick="window.print()" class="button">Print Ticket</button>
    <a href="/" class="button outline">Back to Home</a>
  </div>
</body>
</html>
`))

type ticketRepo interface {
	FindByTicketID(ctx context.Context, ticketID string) (*models.Registration, error)
}

// TicketService renders the printable ticket page for confirmed attendees.
type TicketService struct {
	repo   ticketRepo
	logger *zap.Logger
	event  models.EventInfo
}

// NewTicketService constructs a TicketService.
func NewTicketService(repo ticketRepo, logger *zap.Logger, event models.EventInfo) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{repo: repo, logger: logger, event: event}
}

// RenderPage looks up a ticket by its public number and renders the
// printable HTML page. Only confirmed registrations have valid tickets.
func (s *TicketService) RenderPage(ctx context.Context, ticketID string) (string, error) {
	if ticketID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "Ticket ID is required")
	}

	reg, err := s.repo.FindByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "Ticket not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ticket")
	}

	if reg.PaymentStatus != models.PaymentStatusConfirmed {
		return "", appErrors.Clone(appErrors.ErrValidation, "Ticket is not valid")
	}

	var buf bytes.Buffer
	err = ticketPageTmpl.Execute(&buf, emailTemplateData{
		Registration: reg,
		Event:        s.event,
		TicketID:     ticketID,
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ticket")
	}
	return buf.String(), nil
}
