package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAppointmentEmail() AppointmentEmail {
	return AppointmentEmail{
		PatientName:  "Asha Verma",
		PatientEmail: "asha@example.com",
		PatientPhone: "+919876543210",
		Doctor:       "Dr. Rao",
		Department:   "Cardiology",
		Date:         "March 12, 2025",
		Time:         "10:00 AM",
	}
}

func TestRendererConfirmation(t *testing.T) {
	r := NewRenderer("Renova Hospitals", "+91-11-1234-5678")

	msg, err := r.Confirmation(sampleAppointmentEmail())
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", msg.To)
	assert.Equal(t, "Asha Verma", msg.ToName)
	assert.Equal(t, "Appointment Confirmed - March 12, 2025 - Renova Hospitals", msg.Subject)

	for _, want := range []string{"Dear Asha Verma", "Dr. Rao", "Cardiology", "10:00 AM", "15 minutes early", "+91-11-1234-5678"} {
		assert.Contains(t, msg.Body, want)
		assert.Contains(t, msg.HTML, want)
	}
	assert.True(t, strings.HasPrefix(msg.HTML, "<!DOCTYPE html>"))
}

func TestRendererCancellation(t *testing.T) {
	r := NewRenderer("Renova Hospitals", "")

	msg, err := r.Cancellation(sampleAppointmentEmail())
	require.NoError(t, err)

	assert.Equal(t, "Appointment Cancelled - March 12, 2025 - Renova Hospitals", msg.Subject)
	assert.Contains(t, msg.Body, "cancelled as requested")
	assert.Contains(t, msg.HTML, "Appointment Cancelled")
	assert.NotContains(t, msg.Body, " at .", "empty contact must not leak into the copy")
}

func TestRendererDefaultsPatientName(t *testing.T) {
	r := NewRenderer("", "")

	data := sampleAppointmentEmail()
	data.PatientName = ""
	msg, err := r.Confirmation(data)
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Dear Patient")
	assert.Contains(t, msg.Subject, "Renova Hospitals")
}
