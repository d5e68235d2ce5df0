package notify

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// AppointmentEmail carries the fields rendered into confirmation and
// cancellation emails.
type AppointmentEmail struct {
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	Doctor          string
	Department      string
	Date            string // human-readable, e.g. "March 12, 2025"
	Time            string // human-readable, e.g. "10:00 AM"
	HospitalName    string
	HospitalContact string
}

// Renderer builds appointment emails from parsed templates.
type Renderer struct {
	hospitalName    string
	hospitalContact string

	confirmText *texttemplate.Template
	confirmHTML *htmltemplate.Template
	cancelText  *texttemplate.Template
	cancelHTML  *htmltemplate.Template
}

// NewRenderer creates an email renderer branded with the hospital identity.
func NewRenderer(hospitalName, hospitalContact string) *Renderer {
	if hospitalName == "" {
		hospitalName = "Renova Hospitals"
	}
	return &Renderer{
		hospitalName:    hospitalName,
		hospitalContact: hospitalContact,
		confirmText:     texttemplate.Must(texttemplate.New("confirm").Parse(confirmationText)),
		confirmHTML:     htmltemplate.Must(htmltemplate.New("confirm").Parse(confirmationHTML)),
		cancelText:      texttemplate.Must(texttemplate.New("cancel").Parse(cancellationText)),
		cancelHTML:      htmltemplate.Must(htmltemplate.New("cancel").Parse(cancellationHTML)),
	}
}

// Confirmation renders the booking confirmation email.
func (r *Renderer) Confirmation(data AppointmentEmail) (EmailMessage, error) {
	r.brand(&data)

	var text, html strings.Builder
	if err := r.confirmText.Execute(&text, data); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render confirmation: %w", err)
	}
	if err := r.confirmHTML.Execute(&html, data); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render confirmation: %w", err)
	}

	return EmailMessage{
		To:      data.PatientEmail,
		ToName:  data.PatientName,
		Subject: fmt.Sprintf("Appointment Confirmed - %s - %s", data.Date, data.HospitalName),
		Body:    text.String(),
		HTML:    html.String(),
	}, nil
}

// Cancellation renders the cancellation notice email.
func (r *Renderer) Cancellation(data AppointmentEmail) (EmailMessage, error) {
	r.brand(&data)

	var text, html strings.Builder
	if err := r.cancelText.Execute(&text, data); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render cancellation: %w", err)
	}
	if err := r.cancelHTML.Execute(&html, data); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render cancellation: %w", err)
	}

	return EmailMessage{
		To:      data.PatientEmail,
		ToName:  data.PatientName,
		Subject: fmt.Sprintf("Appointment Cancelled - %s - %s", data.Date, data.HospitalName),
		Body:    text.String(),
		HTML:    html.String(),
	}, nil
}

func (r *Renderer) brand(data *AppointmentEmail) {
	if data.HospitalName == "" {
		data.HospitalName = r.hospitalName
	}
	if data.HospitalContact == "" {
		data.HospitalContact = r.hospitalContact
	}
	if data.PatientName == "" {
		data.PatientName = "Patient"
	}
}

const confirmationText = `Dear {{.PatientName}},

Thank you for scheduling your appointment with us. Your appointment has been
confirmed with the following details:

  Date:       {{.Date}}
  Time:       {{.Time}}
  Doctor:     {{.Doctor}}
  Department: {{.Department}}

Please arrive 15 minutes early for check-in, and bring a valid photo ID and a
list of your current medications.

If you need to reschedule or cancel, please call us at least 24 hours in
advance{{if .HospitalContact}} at {{.HospitalContact}}{{end}}.

Thank you for choosing {{.HospitalName}}.
`

const confirmationHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Appointment Confirmation - {{.HospitalName}}</title></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; border-radius: 10px; overflow: hidden;">
    <div style="background: #2c5aa0; color: white; padding: 30px 20px; text-align: center;">
      <h1 style="margin: 0; font-size: 26px; font-weight: 300;">{{.HospitalName}}</h1>
      <p style="margin: 10px 0 0 0; font-size: 16px;">Your Appointment is Confirmed</p>
    </div>
    <div style="padding: 35px 30px;">
      <h2 style="color: #2c5aa0; margin-top: 0;">Dear {{.PatientName}},</h2>
      <p style="color: #555; line-height: 1.6;">Thank you for scheduling your appointment with us. Your appointment has been confirmed with the following details:</p>
      <div style="background-color: #f8fafc; border-left: 4px solid #2c5aa0; padding: 20px; margin: 20px 0;">
        <table style="width: 100%; border-collapse: collapse;">
          <tr><td style="padding: 6px 0; color: #666; font-weight: 600; width: 120px;">Date:</td><td style="padding: 6px 0; color: #333;">{{.Date}}</td></tr>
          <tr><td style="padding: 6px 0; color: #666; font-weight: 600;">Time:</td><td style="padding: 6px 0; color: #333;">{{.Time}}</td></tr>
          <tr><td style="padding: 6px 0; color: #666; font-weight: 600;">Doctor:</td><td style="padding: 6px 0; color: #333;">{{.Doctor}}</td></tr>
          <tr><td style="padding: 6px 0; color: #666; font-weight: 600;">Department:</td><td style="padding: 6px 0; color: #333;">{{.Department}}</td></tr>
          {{if .PatientPhone}}<tr><td style="padding: 6px 0; color: #666; font-weight: 600;">Phone:</td><td style="padding: 6px 0; color: #333;">{{.PatientPhone}}</td></tr>{{end}}
        </table>
      </div>
      <div style="background-color: #fff8e1; border: 1px solid #ffd54f; padding: 15px 20px; border-radius: 5px;">
        <ul style="color: #666; line-height: 1.6; margin: 0; padding-left: 20px;">
          <li>Please arrive <strong>15 minutes early</strong> for check-in</li>
          <li>Bring a valid <strong>photo ID</strong></li>
          <li>Bring a list of your <strong>current medications</strong></li>
        </ul>
      </div>
      <p style="color: #666; line-height: 1.6;">If you need to reschedule or cancel, please call us at least <strong>24 hours in advance</strong>{{if .HospitalContact}} at {{.HospitalContact}}{{end}}.</p>
    </div>
    <div style="background-color: #f5f5f5; padding: 20px 30px; text-align: center;">
      <p style="color: #2c5aa0; font-weight: 600; margin: 0;">Thank you for choosing {{.HospitalName}}</p>
    </div>
  </div>
</body>
</html>
`

const cancellationText = `Dear {{.PatientName}},

Your appointment has been cancelled as requested:

  Date:       {{.Date}}
  Time:       {{.Time}}
  Doctor:     {{.Doctor}}
  Department: {{.Department}}

If this was a mistake, or you would like to book another appointment, please
call us{{if .HospitalContact}} at {{.HospitalContact}}{{end}} at any time.

Thank you for choosing {{.HospitalName}}.
`

const cancellationHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Appointment Cancelled - {{.HospitalName}}</title></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; border-radius: 10px; overflow: hidden;">
    <div style="background: #7a7a7a; color: white; padding: 30px 20px; text-align: center;">
      <h1 style="margin: 0; font-size: 26px; font-weight: 300;">{{.HospitalName}}</h1>
      <p style="margin: 10px 0 0 0; font-size: 16px;">Appointment Cancelled</p>
    </div>
    <div style="padding: 35px 30px;">
      <h2 style="color: #444; margin-top: 0;">Dear {{.PatientName}},</h2>
      <p style="color: #555; line-height: 1.6;">Your appointment has been cancelled as requested:</p>
      <div style="background-color: #f8fafc; border-left: 4px solid #7a7a7a; padding: 20px; margin: 20px 0;">
        <table style="width: 100%; border-collapse: collapse;">
          <tr><td style="padding: 6px 0; color: #666; font-weight: 600; width: 120px;">Date:</td><td style="padding: 6px 0; color: #333;">{{.Date}}</td></tr>
          <tr><td style="padding: 6px 0; color: #666; font-weight: 600;">Time:</td><td style="padding: 6px 0; color: #333;">{{.Time}}</td></tr>
          <tr><td style="padding: 6px 0; color: #666; font-weight: 600;">Doctor:</td><td style="padding: 6px 0; color: #333;">{{.Doctor}}</td></tr>
          <tr><td style="padding: 6px 0; color: #666; font-weight: 600;">Department:</td><td style="padding: 6px 0; color: #333;">{{.Department}}</td></tr>
        </table>
      </div>
      <p style="color: #666; line-height: 1.6;">If this was a mistake, or you would like to book another appointment, please call us{{if .HospitalContact}} at <strong>{{.HospitalContact}}</strong>{{end}} at any time.</p>
    </div>
    <div style="background-color: #f5f5f5; padding: 20px 30px; text-align: center;">
      <p style="color: #444; font-weight: 600; margin: 0;">Thank you for choosing {{.HospitalName}}</p>
    </div>
  </div>
</body>
</html>
`
