package netutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// MapIP приводит адрес клиента к форме, пригодной для хранения.
// IPv4 возвращается как есть; IPv6 сворачивается в стабильную
// псевдо-IPv4 строку через хеш (необратимое отображение).
func MapIP(ip string) string {
	ip = strings.TrimPrefix(ip, "::ffff:")

	if !strings.Contains(ip, ":") {
		return ip
	}

	sum := sha256.Sum256([]byte(ip))
	prefix := hex.EncodeToString(sum[:])[:8]

	octets := make([]string, 0, 4)
	for i := 0; i < 8; i += 2 {
		b, _ := hex.DecodeString(prefix[i : i+2])
		octets = append(octets, fmt.Sprintf("%d", b[0]))
	}

	return strings.Join(octets, ".")
}
