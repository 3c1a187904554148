package service

import (
	"context"
	"fmt"

	"flexicredit-backend/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendInsufficientFundsNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, balance int64) error {
	subject := "Campaign paused: insufficient flexi-credits"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour %s campaign could not be billed and has been paused. Your current balance is %d credits.\nTop up your flexi-credits and resume the campaign from your dashboard.\n\nBest regards,\nThe FlexiCredit Team",
		name, campaignType, balance)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendCampaignStatusNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, status domain.BillingStatus) error {
	subject := fmt.Sprintf("Campaign update: %s", campaignType)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour %s campaign status is now: %s.\n\nBest regards,\nThe FlexiCredit Team",
		name, campaignType, status)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendTierChangeNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, oldCost, newCost int64) error {
	subject := fmt.Sprintf("Tier change confirmed: %s", campaignType)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour %s campaign tier changed from %d to %d credits per month.",
		name, campaignType, oldCost, newCost)
	if newCost < oldCost {
		body += "\nThe new rate applies from your next billing cycle."
	}
	body += "\n\nBest regards,\nThe FlexiCredit Team"
	return s.send(email, name, subject, body)
}

func (s *emailService) SendDeductionNotice(ctx context.Context, email, name string, amount int64, reason string) error {
	subject := "Recurring deduction applied"
	body := fmt.Sprintf(
		"Hello %s,\n\nA recurring deduction of %d credits was applied to your account.\nReason: %s\n\nBest regards,\nThe FlexiCredit Team",
		name, amount, reason)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendLowBalanceWarning(ctx context.Context, email, name string, balance, threshold int64) error {
	subject := "Low flexi-credit balance"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour flexi-credit balance has dropped to %d credits (warning threshold: %d).\nTop up to keep your campaigns running without interruption.\n\nBest regards,\nThe FlexiCredit Team",
		name, balance, threshold)
	return s.send(email, name, subject, body)
}
