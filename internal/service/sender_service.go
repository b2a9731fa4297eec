package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"parkhive/internal/entities"
)

// SenderService implements Notifier over SendGrid and Twilio. Delivery is
// fire-and-forget; a failed message never fails the booking operation that
// triggered it.
type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func (s *SenderService) SendBookingEmail(b entities.BookingResponse, status string) {
	emailData := entities.BookingEmailData{
		UserName:           b.UserName,
		Reference:          b.Reference,
		SlotCode:           b.SlotCode,
		VehicleModel:       b.VehicleModel,
		VehicleNumber:      b.VehicleNumber,
		StartTimeFormatted: b.StartTime.UTC().Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   b.EndTime.UTC().Format("02 Jan 2006 15:04 MST"),
		TotalCost:          b.TotalCost,
		Status:             status,
		CurrentYear:        time.Now().UTC().Year(),
	}

	emailSubject := fmt.Sprintf("Your ParkHive booking is %s - Reference: %s", status, emailData.Reference)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour booking at ParkHive is %s.\n\n"+
			"Booking Details:\n"+
			"Reference: %s\n"+
			"Vehicle: %s (Number: %s)\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Total: %.2f EUR\n\n"+
			"Thank you for choosing ParkHive.\n\n"+
			"ParkHive. All rights reserved.",
		emailData.UserName, status, emailData.Reference, emailData.VehicleModel, emailData.VehicleNumber,
		emailData.StartTimeFormatted, emailData.EndTimeFormatted, emailData.TotalCost,
	)

	htmlBody := plainTextBody
	tmplPath := filepath.Join("internal", "templates", "booking_email.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("ALERT: could not parse HTML email template (%s): %v", tmplPath, err)
	} else {
		var htmlBodyBuffer bytes.Buffer
		if err := tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
			log.Printf("ALERT: could not render HTML email for booking %s: %v", emailData.Reference, err)
		} else {
			htmlBody = htmlBodyBuffer.String()
		}
	}

	go func(toEmail, userName, subject, plainBody, htmlBodyContent string) {
		if errEmail := SendEmailWithSendGrid(toEmail, userName, subject, plainBody, htmlBodyContent); errEmail != nil {
			log.Printf("ALERT (async): email delivery failed for booking %s: %v", emailData.Reference, errEmail)
		}
	}(b.UserEmail, emailData.UserName, emailSubject, plainTextBody, htmlBody)
}

func (s *SenderService) SendBookingSMS(b entities.BookingResponse, status string) {
	if b.UserPhone == "" {
		return
	}

	smsMessage := fmt.Sprintf("ParkHive: Booking %s has been %s!\nCheck-in: %s.\nMore details in your email.",
		b.Reference, status,
		b.StartTime.UTC().Format("02/01 15:04"),
	)

	go func(phone, message, reference string) {
		if errSMS := SendSMS(phone, message); errSMS != nil {
			log.Printf("ALERT (async): SMS delivery failed for booking %s: %v", reference, errSMS)
		}
	}(b.UserPhone, smsMessage, b.Reference)
}
