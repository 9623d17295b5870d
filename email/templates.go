package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// LoanMailData feeds the loan lifecycle mails.
type LoanMailData struct {
	Name    string
	Brand   string
	Model   string
	Serial  string
	DueDate time.Time
	LoanID  string
	AppURL  string
}

// AvailableMailData feeds the waitlist "device available" mail.
type AvailableMailData struct {
	Name   string
	Brand  string
	Model  string
	AppURL string
}

var baseTmpl = template.Must(template.New("base").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Heading}}</h2>
  <p>Hi {{.Name}},</p>
  <p>{{.Lead}}</p>
  <ul>
    <li><strong>Device:</strong> {{.Brand}} {{.Model}}</li>
    {{if .Serial}}<li><strong>Serial:</strong> {{.Serial}}</li>{{end}}
    {{if .Due}}<li><strong>Due:</strong> {{.Due}}</li>{{end}}
    {{if .LoanID}}<li><strong>Loan ID:</strong> {{.LoanID}}</li>{{end}}
  </ul>
  {{if .Action}}<p>{{.Action}}</p>{{end}}
  <p><a href="{{.Link}}">{{.LinkText}}</a></p>
  <p style="color: #666; font-size: 12px;">Automated message from the Campus Device Loan System.</p>
</body>
</html>`))

type mailBody struct {
	Heading, Name, Lead, Brand, Model, Serial, Due, LoanID, Action, Link, LinkText string
}

func render(b mailBody) (string, error) {
	var buf bytes.Buffer
	if err := baseTmpl.Execute(&buf, b); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func ReservationConfirmation(d LoanMailData) (subject, html string, err error) {
	subject = fmt.Sprintf("Device Reservation Confirmed - %s %s", d.Brand, d.Model)
	html, err = render(mailBody{
		Heading:  "Device Reservation Confirmed",
		Name:     d.Name,
		Lead:     "Your device reservation has been confirmed.",
		Brand:    d.Brand,
		Model:    d.Model,
		Serial:   d.Serial,
		Due:      d.DueDate.Format("Mon, 02 Jan 2006 15:04"),
		LoanID:   d.LoanID,
		Action:   "Visit the Campus IT office with your student ID to collect your device.",
		Link:     d.AppURL + "/reservations",
		LinkText: "View my reservations",
	})
	return subject, html, err
}

func CollectionConfirmation(d LoanMailData) (subject, html string, err error) {
	subject = fmt.Sprintf("Device Collected - %s %s", d.Brand, d.Model)
	html, err = render(mailBody{
		Heading:  "Device Collected",
		Name:     d.Name,
		Lead:     "You have collected your device. Enjoy!",
		Brand:    d.Brand,
		Model:    d.Model,
		Serial:   d.Serial,
		Due:      d.DueDate.Format("Mon, 02 Jan 2006 15:04"),
		LoanID:   d.LoanID,
		Action:   "Please return the device to the Campus IT office by the due date.",
		Link:     d.AppURL + "/reservations",
		LinkText: "View my reservations",
	})
	return subject, html, err
}

func ReturnConfirmation(d LoanMailData) (subject, html string, err error) {
	subject = fmt.Sprintf("Device Returned - %s %s", d.Brand, d.Model)
	html, err = render(mailBody{
		Heading:  "Device Returned",
		Name:     d.Name,
		Lead:     "Thanks, your device has been checked back in.",
		Brand:    d.Brand,
		Model:    d.Model,
		Serial:   d.Serial,
		LoanID:   d.LoanID,
		Link:     d.AppURL + "/devices",
		LinkText: "Browse devices",
	})
	return subject, html, err
}

func DeviceAvailable(d AvailableMailData) (subject, html string, err error) {
	subject = fmt.Sprintf("Device Available - %s %s", d.Brand, d.Model)
	html, err = render(mailBody{
		Heading:  "A device you wanted is available",
		Name:     d.Name,
		Lead:     fmt.Sprintf("A %s %s has just been returned and is available to reserve.", d.Brand, d.Model),
		Brand:    d.Brand,
		Model:    d.Model,
		Action:   "Devices go fast — reserve soon if you still need one.",
		Link:     d.AppURL + "/devices",
		LinkText: "Reserve now",
	})
	return subject, html, err
}
