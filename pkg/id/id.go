package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// clientPrefix помечает ордера бота. OKX принимает clOrdId до 32 букв/цифр,
// префикс + ULID = 28.
const clientPrefix = "sb"

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Monotonic: id в пределах одной миллисекунды остаются возрастающими
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New возвращает ULID (сортируется по времени создания).
func New() string {
	return at(time.Now().UTC()).String()
}

// ClientOrderID: id ордера для биржи.
func ClientOrderID() string {
	return clientPrefix + New()
}

// Time достаёт момент создания из id, выданного New или ClientOrderID.
func Time(s string) (time.Time, error) {
	if len(s) == ulid.EncodedSize+len(clientPrefix) {
		s = s[len(clientPrefix):]
	}
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}

func at(t time.Time) ulid.ULID {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(t), mono)
	if err != nil {
		panic(err)
	}
	return u
}
