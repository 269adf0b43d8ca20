package email

import (
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"backend/internal/models"
)

// Mailer dispatches order-completion summaries over SMTP. It is strictly
// best-effort: every failure comes back as an error value and callers
// decide whether to surface it. It never rolls back anything.
type Mailer struct {
	Host             string
	Port             string
	Username         string
	Password         string
	SenderName       string
	DefaultRecipient string
}

func NewMailer(host, port, username, password, senderName, defaultRecipient string) *Mailer {
	return &Mailer{
		Host:             host,
		Port:             port,
		Username:         username,
		Password:         password,
		SenderName:       senderName,
		DefaultRecipient: defaultRecipient,
	}
}

// SendOrderCompletion renders the completed orders and sends them to
// recipient, falling back to the configured default. Without SMTP
// credentials it only logs, so development setups work without a mail
// account.
func (m *Mailer) SendOrderCompletion(orders []models.Order, recipient string) error {
	if len(orders) == 0 {
		return errors.New("발송할 주문이 없습니다.")
	}

	to := strings.TrimSpace(recipient)
	if to == "" {
		to = strings.TrimSpace(m.DefaultRecipient)
	}
	if to == "" {
		return errors.New("수신자 이메일 주소가 설정되지 않았습니다.")
	}

	subject := fmt.Sprintf("[바이오맥스] 완료 처리된 주문 내역 (%s)", time.Now().Format("2006-01-02"))
	body := renderOrdersHTML(orders)

	if m.Username == "" || m.Password == "" {
		log.Printf("[EMAIL] [INFO] SMTP not configured, skipping send to %s: %s", to, subject)
		return nil
	}

	msg := buildMessage(m.SenderName, m.Username, to, subject, body)

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(m.Host+":"+m.Port, auth, m.Username, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("이메일 발송 중 오류가 발생했습니다: %w", err)
	}

	log.Println("[EMAIL] [INFO] order completion email sent to:", to)
	return nil
}

func buildMessage(senderName, from, to, subject, htmlBody string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s <%s>\r\n", senderName, from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}

func renderOrdersHTML(orders []models.Order) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #4a5568;">완료 처리된 주문 내역</h2>`)
	b.WriteString(`<p>다음 주문이 완료 처리되었습니다:</p>`)

	for _, order := range orders {
		b.WriteString(`<div style="margin-bottom: 30px; border: 1px solid #eee; padding: 15px; border-radius: 5px;">`)
		b.WriteString(fmt.Sprintf(`<h3 style="margin-top: 0; color: #333;">주문 ID: %s</h3>`, order.ID.Hex()))
		b.WriteString(fmt.Sprintf(`<p><strong>주문자:</strong> %s (%s)</p>`, order.CustomerName, order.CompanyName))
		b.WriteString(fmt.Sprintf(`<p><strong>주문일:</strong> %s</p>`, order.Date.Format("2006-01-02 15:04")))
		b.WriteString(`<table style="width: 100%; border-collapse: collapse; margin-top: 10px;">`)
		b.WriteString(`<thead><tr style="background-color: #f2f2f2;">`)
		b.WriteString(`<th style="padding: 8px; border: 1px solid #ddd;">제품명</th>`)
		b.WriteString(`<th style="padding: 8px; border: 1px solid #ddd;">수량</th>`)
		b.WriteString(`<th style="padding: 8px; border: 1px solid #ddd;">등록일</th>`)
		b.WriteString(`<th style="padding: 8px; border: 1px solid #ddd;">제품 메모</th>`)
		b.WriteString(`</tr></thead><tbody>`)

		for _, item := range order.Items {
			b.WriteString(`<tr>`)
			b.WriteString(fmt.Sprintf(`<td style="padding: 8px; border: 1px solid #ddd;">%s</td>`, item.Name))
			b.WriteString(fmt.Sprintf(`<td style="padding: 8px; border: 1px solid #ddd; text-align: center;">%d</td>`, item.Quantity))
			b.WriteString(fmt.Sprintf(`<td style="padding: 8px; border: 1px solid #ddd;">%s</td>`, orDash(item.RegistDate)))
			b.WriteString(fmt.Sprintf(`<td style="padding: 8px; border: 1px solid #ddd;">%s</td>`, orDash(item.Note)))
			b.WriteString(`</tr>`)
		}

		b.WriteString(`</tbody></table></div>`)
	}

	b.WriteString(`<p style="color: #718096; font-size: 0.9em;">이 이메일은 바이오맥스 주문시스템에서 자동 발송되었습니다.</p>`)
	b.WriteString(`</div>`)

	return b.String()
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
