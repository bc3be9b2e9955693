package notify

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/example/gostore/internal/config"
)

// Sender 发送一封收据邮件
type Sender interface {
	Send(ctx context.Context, r *Receipt) error
}

// SMTPSender 通过 SMTP 投递收据
type SMTPSender struct {
	dialer  *gomail.Dialer
	from    string
	shopURL string
}

// NewSMTPSender 根据邮件配置创建发送器
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		shopURL: cfg.ShopURL,
	}
}

// Message 组装邮件，不做网络调用
func (s *SMTPSender) Message(r *Receipt) (*gomail.Message, error) {
	body, err := RenderHTML(r, s.shopURL)
	if err != nil {
		return nil, err
	}
	text, err := RenderText(r, s.shopURL)
	if err != nil {
		return nil, err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", r.CustomerEmail, r.CustomerName)
	m.SetHeader("Subject", r.Subject())
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", body)
	return m, nil
}

func (s *SMTPSender) Send(ctx context.Context, r *Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.Message(r)
	if err != nil {
		return err
	}
	return s.dialer.DialAndSend(m)
}
