package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// BookingDetails is what every reservation notification talks about.
type BookingDetails struct {
	ReservationID  uint
	RestaurantName string
	Address        string
	Contact        string
	Date           string
	Time           string
	People         int
}

var bookingTmpl = template.Must(template.New("booking").Parse(`<html><body>
<h1>{{.Heading}}</h1>
<p>{{.Lead}} <strong>{{.RestaurantName}}</strong>.</p>
<p><strong>Reservation:</strong> #{{.ReservationID}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<p><strong>Party Size:</strong> {{.People}} {{if eq .People 1}}person{{else}}people{{end}}</p>
{{if .Address}}<p><strong>Location:</strong> {{.Address}}</p>{{end}}
{{if .Contact}}<p><strong>Contact:</strong> {{.Contact}}</p>{{end}}
</body></html>`))

type bookingView struct {
	BookingDetails
	Heading string
	Lead    string
}

func render(d BookingDetails, heading, lead string) string {
	var buf bytes.Buffer
	// the template is static and the view has every field it references
	_ = bookingTmpl.Execute(&buf, bookingView{BookingDetails: d, Heading: heading, Lead: lead})
	return buf.String()
}

func BookingConfirmation(toEmail, toName, toPhone string, d BookingDetails) Message {
	return Message{
		ToEmail: toEmail,
		ToName:  toName,
		ToPhone: toPhone,
		Subject: "Your reservation at " + d.RestaurantName + " is confirmed",
		HTML:    render(d, "Booking Confirmation", "Thank you for your reservation at"),
		Text: fmt.Sprintf("Your reservation at %s on %s at %s for %d people has been confirmed!",
			d.RestaurantName, d.Date, d.Time, d.People),
	}
}

func BookingCancellation(toEmail, toName, toPhone string, d BookingDetails) Message {
	return Message{
		ToEmail: toEmail,
		ToName:  toName,
		ToPhone: toPhone,
		Subject: "Your reservation at " + d.RestaurantName + " was cancelled",
		HTML:    render(d, "Reservation Cancelled", "We have cancelled your reservation at"),
		Text: fmt.Sprintf("Your reservation at %s on %s at %s has been cancelled.",
			d.RestaurantName, d.Date, d.Time),
	}
}

func BookingReminder(toEmail, toName, toPhone string, d BookingDetails) Message {
	return Message{
		ToEmail: toEmail,
		ToName:  toName,
		ToPhone: toPhone,
		Subject: "Reminder: your table at " + d.RestaurantName + " today",
		HTML:    render(d, "See you today", "This is a reminder of your reservation today at"),
		Text: fmt.Sprintf("Reminder: your table at %s today at %s for %d people.",
			d.RestaurantName, d.Time, d.People),
	}
}
