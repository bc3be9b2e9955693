// Package payment 把各支付渠道回传的确认数据归一化为订单支付结果。
package payment

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/datamodels/order"
)

// Confirmation PUT /api/orders/:id/pay 的请求体。
// PayPal 把付款人邮箱放在 payer.email_address，Paystack 与转账直接给出 email_address；
// 转账的 id 是数字。
type Confirmation struct {
	ID           json.RawMessage `json:"id"`
	Status       string          `json:"status"`
	UpdateTime   string          `json:"update_time"`
	EmailAddress string          `json:"email_address"`
	Payer        *struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

// Parse 解析并归一化支付确认
func Parse(raw []byte) (order.PaymentResult, error) {
	var c Confirmation
	if err := json.Unmarshal(raw, &c); err != nil {
		return order.PaymentResult{}, apperr.Wrap(apperr.KindValidation, "Invalid payment payload", err)
	}
	return c.Result()
}

// Result 顶层 email_address 优先于 payer.email_address
func (c *Confirmation) Result() (order.PaymentResult, error) {
	id, err := rawID(c.ID)
	if err != nil {
		return order.PaymentResult{}, err
	}
	email := strings.TrimSpace(c.EmailAddress)
	if email == "" && c.Payer != nil {
		email = strings.TrimSpace(c.Payer.EmailAddress)
	}
	return order.PaymentResult{
		ID:           id,
		Status:       c.Status,
		UpdateTime:   c.UpdateTime,
		EmailAddress: email,
	}, nil
}

// rawID 接受字符串或数字形式的 id
func rawID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", apperr.Wrap(apperr.KindValidation, "Invalid payment id", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "Invalid payment id", err)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}
