package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"whereiscurtis/internal/models"
)

type SpotClient interface {
	FetchLatest(ctx context.Context) (*FeedExchange, error)
}

// FeedExchange — один обмен со Spot API. RawRequest/RawResponse/StatusCode
// заполняются и при неудачном вызове, чтобы координатор мог записать
// обмен в аудит независимо от исхода.
type FeedExchange struct {
	Messages    []models.Event
	RawRequest  []byte
	RawResponse []byte
	StatusCode  int
}

type spotClient struct {
	baseURL    string
	feedID     string
	httpClient *http.Client
}

type SpotConfig struct {
	BaseURL string
	FeedID  string
}

func NewSpotClient(config SpotConfig) SpotClient {
	return &spotClient{
		baseURL: config.BaseURL,
		feedID:  config.FeedID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *spotClient) FetchLatest(ctx context.Context) (*FeedExchange, error) {
	url := fmt.Sprintf("%s/%s/message.json", c.baseURL, c.feedID)

	rawRequest, _ := json.Marshal(map[string]string{
		"method": "GET",
		"url":    url,
	})
	exchange := &FeedExchange{
		RawRequest:  rawRequest,
		RawResponse: []byte("null"),
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return exchange, &NetworkError{Err: err}
	}

	req.Header.Set("User-Agent", "WhereIsCurtis/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return exchange, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	exchange.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return exchange, &NetworkError{Err: err}
	}
	if len(body) > 0 {
		// Колонка аудита jsonb, поэтому не-JSON тело (например, HTML
		// страницы ошибки) заворачивается в JSON-строку
		if json.Valid(body) {
			exchange.RawResponse = body
		} else {
			exchange.RawResponse, _ = json.Marshal(string(body))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return exchange, &HTTPError{StatusCode: resp.StatusCode}
	}

	messages, err := ParseFeedResponse(body)
	if err != nil {
		return exchange, err
	}

	exchange.Messages = messages
	return exchange, nil
}

// Форма ответа Spot API:
// {response: {feedMessageResponse: {messages: {message: [...]}}}}
type spotFeedResponse struct {
	Response struct {
		FeedMessageResponse struct {
			Messages struct {
				Message []spotRawMessage `json:"message"`
			} `json:"messages"`
		} `json:"feedMessageResponse"`
	} `json:"response"`
}

type spotRawMessage struct {
	ID             interface{} `json:"id"`
	MessageType    *string     `json:"messageType"`
	MessageContent string      `json:"messageContent"`
	UnixTime       *int64      `json:"unixTime"`
	Latitude       *float64    `json:"latitude"`
	Longitude      *float64    `json:"longitude"`
}

// ParseFeedResponse разбирает тело ответа фида в события. Лишние поля
// игнорируются; отсутствие обязательного поля у любого сообщения
// роняет весь разбор с ParseError, частичных батчей не бывает.
func ParseFeedResponse(body []byte) ([]models.Event, error) {
	var feed spotFeedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, &ParseError{Err: err}
	}

	raw := feed.Response.FeedMessageResponse.Messages.Message
	events := make([]models.Event, 0, len(raw))
	for i, message := range raw {
		id, ok := messageID(message.ID)
		if !ok {
			return nil, &ParseError{Err: fmt.Errorf("message %d: missing required field %q", i, "id")}
		}
		if message.MessageType == nil {
			return nil, &ParseError{Err: fmt.Errorf("message %d: missing required field %q", i, "messageType")}
		}
		if message.UnixTime == nil {
			return nil, &ParseError{Err: fmt.Errorf("message %d: missing required field %q", i, "unixTime")}
		}
		if message.Latitude == nil {
			return nil, &ParseError{Err: fmt.Errorf("message %d: missing required field %q", i, "latitude")}
		}
		if message.Longitude == nil {
			return nil, &ParseError{Err: fmt.Errorf("message %d: missing required field %q", i, "longitude")}
		}

		events = append(events, models.Event{
			ID:             id,
			MessageType:    models.MessageType(*message.MessageType),
			MessageContent: message.MessageContent,
			UnixTime:       *message.UnixTime,
			Latitude:       *message.Latitude,
			Longitude:      *message.Longitude,
		})
	}

	return events, nil
}

// Spot отдает id числом, но в базе он строковый ключ
func messageID(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
