// Package contextkeys - ключи значений, которые HTTP-слой кладет в context запроса.
package contextkeys

type key uint8

const (
	// ActorID - uint64, кто выполняет действие с оборудованием или лицензией (заголовок X-User-ID).
	ActorID key = iota + 1
	// RequestID - строка из X-Request-ID, связывает записи лога одного запроса.
	RequestID
)

func (k key) String() string {
	switch k {
	case ActorID:
		return "actor_id"
	case RequestID:
		return "request_id"
	}
	return "unknown"
}
