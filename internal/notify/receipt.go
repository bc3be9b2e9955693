// Package notify 负责支付成功后的收据邮件：渲染、入队与发送。
package notify

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/gostore/internal/datamodels/order"
)

// ReceiptLine 收据中的商品行
type ReceiptLine struct {
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Receipt 队列消息体，包含渲染邮件所需的全部数据
type Receipt struct {
	MessageID     string                `json:"message_id"`
	OrderID       int64                 `json:"order_id"`
	OrderedAt     time.Time             `json:"ordered_at"`
	CustomerName  string                `json:"customer_name"`
	CustomerEmail string                `json:"customer_email"`
	Lines         []ReceiptLine         `json:"lines"`
	ItemsPrice    decimal.Decimal       `json:"items_price"`
	ShippingPrice decimal.Decimal       `json:"shipping_price"`
	TaxPrice      decimal.Decimal       `json:"tax_price"`
	TotalPrice    decimal.Decimal       `json:"total_price"`
	PaymentMethod string                `json:"payment_method"`
	Shipping      order.ShippingAddress `json:"shipping"`
}

// ErrNoRecipient 订单未加载下单用户或用户没有邮箱
var ErrNoRecipient = errors.New("order has no recipient")

// NewReceipt 从订单及其下单用户生成收据
func NewReceipt(o *order.Order) (*Receipt, error) {
	if o.User == nil || o.User.Email == "" {
		return nil, ErrNoRecipient
	}
	lines := make([]ReceiptLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, ReceiptLine{Name: l.Name, Image: l.Image, Quantity: l.Quantity, Price: l.Price})
	}
	return &Receipt{
		MessageID:     uuid.NewString(),
		OrderID:       o.ID,
		OrderedAt:     o.CreatedAt,
		CustomerName:  o.User.Name,
		CustomerEmail: o.User.Email,
		Lines:         lines,
		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TaxPrice:      o.TaxPrice,
		TotalPrice:    o.TotalPrice,
		PaymentMethod: o.PaymentMethod,
		Shipping:      o.ShippingAddress,
	}, nil
}

// Subject 邮件标题
func (r *Receipt) Subject() string {
	return fmt.Sprintf("New order %d", r.OrderID)
}

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"day":   func(t time.Time) string { return t.Format("2006-01-02") },
}).Parse(`<h1>Thanks for shopping with us</h1>
<p>Hi {{.R.CustomerName}},</p>
<p>We have finished processing your order.</p>
<h2>[Order {{.R.OrderID}}] ({{day .R.OrderedAt}})</h2>
<table>
  <thead>
    <tr>
      <td><strong>Image</strong></td>
      <td><strong>Product</strong></td>
      <td><strong>Quantity</strong></td>
      <td><strong>Price</strong></td>
    </tr>
  </thead>
  <tbody>
  {{- range .R.Lines}}
    <tr>
      <td><img src="{{.Image}}" style="max-width:3rem; max-height:3rem"/></td>
      <td>{{.Name}}</td>
      <td align="center">{{.Quantity}}</td>
      <td align="right">{{money .Price}}</td>
    </tr>
  {{- end}}
  </tbody>
  <tfoot>
    <tr><td colspan="3">Items Price:</td><td align="right">&#8358;{{money .R.ItemsPrice}}</td></tr>
    <tr><td colspan="3">Shipping Price:</td><td align="right">&#8358;{{money .R.ShippingPrice}}</td></tr>
    <tr><td colspan="3">Tax Price:</td><td align="right">&#8358;{{money .R.TaxPrice}}</td></tr>
    <tr><td colspan="3">Total Price:</td><td align="right"><strong>&#8358;{{money .R.TotalPrice}}</strong></td></tr>
    <tr><td colspan="3">Payment Method:</td><td align="right">{{.R.PaymentMethod}}</td></tr>
  </tfoot>
</table>
<h2>Shipping Address</h2>
<p>
  {{.R.Shipping.FullName}},<br/>
  {{.R.Shipping.Address}},<br/>
  {{.R.Shipping.City}},<br/>
  {{.R.Shipping.Country}},<br/>
  {{.R.Shipping.PostalCode}}<br/>
</p>
<hr/>
<p>
  Thanks for shopping with us.<br/>
  <a href="{{.ShopURL}}">Click here to shop more</a>
</p>
`))

// RenderHTML 渲染收据邮件正文
func RenderHTML(r *Receipt, shopURL string) (string, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, struct {
		R       *Receipt
		ShopURL string
	}{R: r, ShopURL: shopURL}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var textConverter = func() *md.Converter {
	c := md.NewConverter("", true, nil)
	c.Use(plugin.GitHubFlavored())
	return c
}()

// RenderText 由 HTML 正文生成纯文本（markdown）版本，供不显示 HTML 的客户端使用
func RenderText(r *Receipt, shopURL string) (string, error) {
	body, err := RenderHTML(r, shopURL)
	if err != nil {
		return "", err
	}
	return textConverter.ConvertString(body)
}
