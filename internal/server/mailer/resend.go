package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendMailer delivers account emails through the Resend API. Links in the
// email bodies are built from the public base URL of the deployment.
type ResendMailer struct {
	client  *resend.Client
	sender  string
	baseURL string
}

// NewResendMailer constructs a mailer with the given API key, sender address
// and public base URL.
func NewResendMailer(apiKey, sender, baseURL string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), sender: sender, baseURL: baseURL}
}

// sendEmail is a seam for testing the Resend client call.
var sendEmail = func(ctx context.Context, client *resend.Client, params *resend.SendEmailRequest) error {
	_, err := client.Emails.SendWithContext(ctx, params)
	return err
}

// SendConfirmation emails the account confirmation link.
func (m *ResendMailer) SendConfirmation(ctx context.Context, p Payload) error {
	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{p.Email},
		Subject: "Confirma tu cuenta en BienesRaices.com",
		Html: fmt.Sprintf(
			`<p>Hola %s, comprueba tu cuenta en BienesRaices.com</p>
			<p>Tu cuenta ya está lista, solo debes confirmarla en el siguiente enlace:
			<a href="%s/auth/confirm/%s">Confirmar cuenta</a></p>
			<p>Si tú no creaste esta cuenta, puedes ignorar el mensaje.</p>`,
			p.Name, m.baseURL, p.Token),
	}
	if err := sendEmail(ctx, m.client, params); err != nil {
		return fmt.Errorf("error sending confirmation email: %w", err)
	}
	return nil
}

// SendResetInstructions emails the password reset link.
func (m *ResendMailer) SendResetInstructions(ctx context.Context, p Payload) error {
	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{p.Email},
		Subject: "Restablece tu contraseña en BienesRaices.com",
		Html: fmt.Sprintf(
			`<p>Hola %s, has solicitado restablecer tu contraseña en BienesRaices.com</p>
			<p>Sigue el siguiente enlace para generar una contraseña nueva:
			<a href="%s/auth/reset-password/%s">Restablecer contraseña</a></p>
			<p>Si tú no solicitaste el cambio, puedes ignorar el mensaje.</p>`,
			p.Name, m.baseURL, p.Token),
	}
	if err := sendEmail(ctx, m.client, params); err != nil {
		return fmt.Errorf("error sending reset email: %w", err)
	}
	return nil
}
