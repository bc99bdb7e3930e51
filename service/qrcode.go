package service

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// OrderQRCode renders a PNG QR code linking to the order page
type OrderQRCode struct {
	BaseURL string
}

func NewOrderQRCode(baseURL string) *OrderQRCode {
	return &OrderQRCode{BaseURL: strings.TrimRight(baseURL, "/")}
}

// URL is the page the code points at
func (q *OrderQRCode) URL(orderID string) string {
	return q.BaseURL + "/pedidos/" + orderID
}

func (q *OrderQRCode) PNG(orderID string) ([]byte, error) {
	png, err := qrcode.Encode(q.URL(orderID), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("generate qr code for %s: %w", orderID, err)
	}
	return png, nil
}
