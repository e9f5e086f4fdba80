package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
)

// RequestHash считает отпечаток запроса: метод, путь и тело. Повтор с тем же
// ключом и другим отпечатком отклоняется.
func RequestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
