package clients

import "fmt"

// NetworkError — транспортная ошибка: запрос до апстрима не дошел
// или ответ не дочитался.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError — апстрим ответил не-2xx статусом.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("spot API returned status %d", e.StatusCode)
}

// ParseError — тело ответа не парсится или в сообщении нет
// обязательного поля.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
