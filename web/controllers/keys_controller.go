package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/gostore/internal/config"
)

// KeysController 下发前端所需的第三方公钥
type KeysController struct {
	keys config.KeysConfig
}

func NewKeysController(keys config.KeysConfig) *KeysController {
	return &KeysController{keys: keys}
}

// PayPal GET /api/keys/paypal，返回纯文本 client id
func (c *KeysController) PayPal(ctx iris.Context) {
	id := c.keys.PayPalClientID
	if id == "" {
		id = "sb"
	}
	ctx.ContentType("text/plain; charset=utf-8")
	_, _ = ctx.WriteString(id)
}

// Google GET /api/keys/google
func (c *KeysController) Google(ctx iris.Context) {
	ok(ctx, iris.Map{"key": c.keys.GoogleAPIKey})
}
