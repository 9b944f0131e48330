package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// EmailService handles sending emails via Resend API
type EmailService struct {
	apiKey    string
	fromEmail string
}

// NewEmailService creates a new email service instance
func NewEmailService() *EmailService {
	return &EmailService{
		apiKey:    os.Getenv("RESEND_API_KEY"),
		fromEmail: os.Getenv("EMAIL_FROM_ADDRESS"),
	}
}

// IsConfigured checks if the email service is properly configured
func (s *EmailService) IsConfigured() bool {
	return s.apiKey != "" && s.fromEmail != ""
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendEmail sends an email using Resend API
func (s *EmailService) SendEmail(to, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service not configured")
	}

	payload := sendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}

	return nil
}

// DailyRecap holds the numbers for the end-of-day summary email
type DailyRecap struct {
	Date         string
	TotalSales   float64
	TotalProfit  float64
	Transactions int
	ItemsSold    int
	TopProduct   string
}

// SendDailyRecap sends the end-of-day sales summary to the store owner
func (s *EmailService) SendDailyRecap(toEmail, ownerName, storeName string, recap DailyRecap) error {
	topProductRow := ""
	if recap.TopProduct != "" {
		topProductRow = fmt.Sprintf(`
            <tr>
                <td style="padding: 8px 0; color: #6b7280;">Produk Terlaris</td>
                <td style="padding: 8px 0; color: #374151; text-align: right;"><strong>%s</strong></td>
            </tr>`, recap.TopProduct)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f5f5f5;">
    <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
        <div style="background: linear-gradient(135deg, #0d9488 0%%, #14b8a6 100%%); border-radius: 16px 16px 0 0; padding: 32px; text-align: center;">
            <h1 style="color: white; margin: 0; font-size: 24px;">Rekap Penjualan Harian</h1>
            <p style="color: #ccfbf1; margin: 8px 0 0 0; font-size: 14px;">%s</p>
        </div>
        <div style="background: white; padding: 32px; border-radius: 0 0 16px 16px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);">
            <p style="color: #374151; font-size: 16px; margin-bottom: 24px;">
                Hai <strong>%s</strong>, berikut ringkasan penjualan <strong>%s</strong> hari ini:
            </p>
            <table style="width: 100%%; border-collapse: collapse;">
                <tr>
                    <td style="padding: 8px 0; color: #6b7280;">Total Penjualan</td>
                    <td style="padding: 8px 0; color: #374151; text-align: right;"><strong>Rp %s</strong></td>
                </tr>
                <tr>
                    <td style="padding: 8px 0; color: #6b7280;">Laba</td>
                    <td style="padding: 8px 0; color: #374151; text-align: right;"><strong>Rp %s</strong></td>
                </tr>
                <tr>
                    <td style="padding: 8px 0; color: #6b7280;">Jumlah Transaksi</td>
                    <td style="padding: 8px 0; color: #374151; text-align: right;"><strong>%d</strong></td>
                </tr>
                <tr>
                    <td style="padding: 8px 0; color: #6b7280;">Item Terjual</td>
                    <td style="padding: 8px 0; color: #374151; text-align: right;"><strong>%d</strong></td>
                </tr>%s
            </table>
        </div>
        <p style="color: #9ca3af; font-size: 12px; text-align: center; margin-top: 24px;">
            Email ini dikirim otomatis oleh KasirKu.
        </p>
    </div>
</body>
</html>
`, recap.Date, ownerName, storeName,
		formatRupiah(recap.TotalSales), formatRupiah(recap.TotalProfit),
		recap.Transactions, recap.ItemsSold, topProductRow)

	subject := fmt.Sprintf("Rekap Penjualan %s - %s", storeName, recap.Date)
	return s.SendEmail(toEmail, subject, htmlBody)
}

// SendLowStockAlert sends a list of products running low
func (s *EmailService) SendLowStockAlert(toEmail, ownerName, storeName string, productNames []string) error {
	var items strings.Builder
	for _, name := range productNames {
		items.WriteString(fmt.Sprintf(`<li style="margin-bottom: 8px;">%s</li>`, name))
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f5f5f5;">
    <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
        <div style="background: linear-gradient(135deg, #d97706 0%%, #f59e0b 100%%); border-radius: 16px 16px 0 0; padding: 32px; text-align: center;">
            <h1 style="color: white; margin: 0; font-size: 24px;">Stok Menipis</h1>
        </div>
        <div style="background: white; padding: 32px; border-radius: 0 0 16px 16px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);">
            <p style="color: #374151; font-size: 16px; margin-bottom: 24px;">
                Hai <strong>%s</strong>, produk berikut di <strong>%s</strong> hampir habis:
            </p>
            <ul style="color: #6b7280; margin: 0; padding-left: 20px;">
                %s
            </ul>
            <p style="color: #6b7280; font-size: 14px; margin-top: 24px;">
                Segera tambah stok agar penjualan tidak terganggu.
            </p>
        </div>
        <p style="color: #9ca3af; font-size: 12px; text-align: center; margin-top: 24px;">
            Email ini dikirim otomatis oleh KasirKu.
        </p>
    </div>
</body>
</html>
`, ownerName, storeName, items.String())

	subject := fmt.Sprintf("Peringatan Stok Menipis - %s", storeName)
	return s.SendEmail(toEmail, subject, htmlBody)
}

// formatRupiah formats a number with dot thousand separators (12.500)
func formatRupiah(amount float64) string {
	n := int64(amount)
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var parts []string
	for len(str) > 3 {
		parts = append([]string{str[len(str)-3:]}, parts...)
		str = str[:len(str)-3]
	}
	parts = append([]string{str}, parts...)
	return strings.Join(parts, ".")
}
