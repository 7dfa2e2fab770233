package password

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 2
	keyLength    = 32
)

// Hasher は pepper を鍵にした決定的な一方向ハッシュを提供します。
// 同じパスワードと pepper からは常に同じ 64 文字の 16 進文字列が得られます。
type Hasher struct{}

// NewHasher は Hasher を生成します。
func NewHasher() Hasher {
	return Hasher{}
}

// Hash はパスワードを pepper と組み合わせてハッシュ化します。
func (Hasher) Hash(plain, pepper string) string {
	key := argon2.IDKey([]byte(plain), []byte(pepper), argonTime, argonMemory, argonThreads, keyLength)
	return hex.EncodeToString(key)
}

// Equal は 2 つのハッシュを定数時間で比較します。
func (Hasher) Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
