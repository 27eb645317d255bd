package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"
)

func GetSMTPClient() (*mail.Client, error) {
	host := os.Getenv("SMTP_HOST")
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	user := os.Getenv("SMTP_USERNAME")
	pass := os.Getenv("SMTP_PASSWORD")
	c, err := mail.NewClient(host, mail.WithPort(port), mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(user), mail.WithPassword(pass))
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return c, nil
}

func SendMail(ctx context.Context, inputParams *SendMailInput) error {
	c, err := GetSMTPClient()
	if err != nil {
		return err
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(inputParams.FromName, inputParams.From); err != nil {
		log.Printf("Failed to set From address: %s\n", err.Error())
		return err
	}
	if err := msg.To(inputParams.To...); err != nil {
		log.Printf("Failed to set To address: %s\n", err.Error())
		return err
	}
	if inputParams.ReplyTo != "" {
		if err := msg.ReplyTo(inputParams.ReplyTo); err != nil {
			log.Printf("Failed to set ReplyTo address: %s\n", err.Error())
		}
	}
	msg.Subject(inputParams.Subject)
	if inputParams.Html {
		msg.SetBodyString(mail.TypeTextHTML, inputParams.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, inputParams.Body)
	}
	return c.DialAndSendWithContext(ctx, msg)
}

type SendMailInput struct {
	From     string
	FromName string
	To       []string
	ReplyTo  string
	Subject  string
	Body     string
	Html     bool
}

// SMTPMailer sends invitation links to guests.
type SMTPMailer struct {
	From     string
	FromName string
}

func NewSMTPMailer() *SMTPMailer {
	fromName := os.Getenv("SMTP_FROM_NAME")
	if fromName == "" {
		fromName = "Recepción"
	}
	return &SMTPMailer{From: os.Getenv("SMTP_FROM"), FromName: fromName}
}

func (m *SMTPMailer) SendInvitation(ctx context.Context, to string, url string) error {
	return SendMail(ctx, &SendMailInput{
		From:     m.From,
		FromName: m.FromName,
		To:       []string{to},
		Subject:  "Formulario de registro de huéspedes",
		Body: fmt.Sprintf(`
			<p>Complete el formulario de registro antes de su llegada.</p>
			<p><a href="%s">Abrir formulario</a></p>
			<p>El enlace vence en una hora. Este es un mensaje automático, no responda este correo.</p>
			`,
			url,
		),
		Html: true,
	})
}
