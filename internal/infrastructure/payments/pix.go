package payments

import (
	"fmt"
	"strings"

	"pdv_payments/internal/domain/entities"
)

// PixPayload holds the fields of a static PIX BR Code ("copia e cola").
type PixPayload struct {
	Key          string
	MerchantName string
	MerchantCity string
	Amount       int64
	TxID         string
}

// BuildPixPayload renders the EMV-MPM string defined by the Banco Central BR Code manual,
// CRC16-CCITT included. Only the mock gateway emits these; real gateways return their own.
func BuildPixPayload(p PixPayload) string {
	txid := p.TxID
	if txid == "" {
		txid = "***"
	}
	account := emvField("00", "br.gov.bcb.pix") + emvField("01", p.Key)

	var b strings.Builder
	b.WriteString(emvField("00", "01"))
	b.WriteString(emvField("26", account))
	b.WriteString(emvField("52", "0000"))
	b.WriteString(emvField("53", "986"))
	if p.Amount > 0 {
		b.WriteString(emvField("54", MinorToDecimal(p.Amount).StringFixed(2)))
	}
	b.WriteString(emvField("58", "BR"))
	b.WriteString(emvField("59", entities.TruncateRunes(p.MerchantName, 25)))
	b.WriteString(emvField("60", entities.TruncateRunes(p.MerchantCity, 15)))
	b.WriteString(emvField("62", emvField("05", entities.TruncateRunes(txid, 25))))
	b.WriteString("6304")

	payload := b.String()
	return payload + fmt.Sprintf("%04X", crc16CCITT([]byte(payload)))
}

// ValidPixPayload checks the trailing CRC of a BR Code.
func ValidPixPayload(s string) bool {
	if len(s) < 8 || s[len(s)-8:len(s)-4] != "6304" {
		return false
	}
	body, crc := s[:len(s)-4], s[len(s)-4:]
	return strings.EqualFold(fmt.Sprintf("%04X", crc16CCITT([]byte(body))), crc)
}

func emvField(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

func crc16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
