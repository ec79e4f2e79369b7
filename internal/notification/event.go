package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Event is one booking status change to tell the requester about.
type Event struct {
	BookingID      string
	Status         string
	ResourceName   string
	RecipientName  string
	RecipientEmail string
	StartTime      time.Time
	EndTime        time.Time
	Purpose        string
	Notes          string
}

// Message is a rendered e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

var statusMessages = map[string]string{
	"approved":  "Your booking has been approved!",
	"declined":  "Your booking has been declined.",
	"cancelled": "Your booking has been cancelled.",
}

var bodyTmpl = template.Must(template.New("status").Parse(`<h2>Booking Status Update</h2>
<p>Dear {{.Name}},</p>
<p>{{.Message}}</p>
<h3>Booking Details:</h3>
<ul>
  <li><strong>Resource:</strong> {{.Resource}}</li>
  <li><strong>Date:</strong> {{.Date}}</li>
  <li><strong>Time:</strong> {{.From}} - {{.To}}</li>
  <li><strong>Purpose:</strong> {{.Purpose}}</li>
</ul>
{{if .Notes}}<p><strong>Admin Notes:</strong> {{.Notes}}</p>
{{end}}<p>Best regards,<br>Campus Resource Management Team</p>
`))

// Render builds the status e-mail. Times are shown in loc (UTC when nil).
func Render(e Event, loc *time.Location) (Message, error) {
	if e.RecipientEmail == "" {
		return Message{}, fmt.Errorf("notification: booking %s has no recipient", e.BookingID)
	}
	if loc == nil {
		loc = time.UTC
	}

	msg, ok := statusMessages[e.Status]
	if !ok {
		msg = "Your booking is now " + e.Status + "."
	}

	start, end := e.StartTime.In(loc), e.EndTime.In(loc)
	var buf bytes.Buffer
	err := bodyTmpl.Execute(&buf, map[string]string{
		"Name":     e.RecipientName,
		"Message":  msg,
		"Resource": e.ResourceName,
		"Date":     start.Format("Monday, January 2, 2006"),
		"From":     start.Format("15:04"),
		"To":       end.Format("15:04 MST"),
		"Purpose":  e.Purpose,
		"Notes":    e.Notes,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render notification: %w", err)
	}

	return Message{
		To:      e.RecipientEmail,
		Subject: fmt.Sprintf("Booking %s - %s", strings.ToUpper(e.Status), e.ResourceName),
		HTML:    buf.String(),
	}, nil
}
