package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"whereiscurtis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedBody = `{
	"response": {
		"feedMessageResponse": {
			"messages": {
				"message": [
					{
						"id": 101,
						"messageType": "UNLIMITED-TRACK",
						"messageContent": "",
						"unixTime": 200,
						"latitude": 40.5,
						"longitude": -121.2,
						"batteryState": "GOOD"
					},
					{
						"id": 100,
						"messageType": "OK",
						"messageContent": "Checking in",
						"unixTime": 100,
						"latitude": 40.4,
						"longitude": -121.1
					}
				]
			}
		}
	}
}`

func newTestClient(url string) SpotClient {
	return NewSpotClient(SpotConfig{BaseURL: url, FeedID: "test-feed"})
}

func TestFetchLatestParsesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-feed/message.json", r.URL.Path)
		w.Write([]byte(feedBody))
	}))
	defer server.Close()

	exchange, err := newTestClient(server.URL).FetchLatest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 200, exchange.StatusCode)
	assert.JSONEq(t, feedBody, string(exchange.RawResponse))
	require.Len(t, exchange.Messages, 2)

	assert.Equal(t, "101", exchange.Messages[0].ID)
	assert.Equal(t, models.MessageTypeUnlimitedTrack, exchange.Messages[0].MessageType)
	assert.Equal(t, int64(200), exchange.Messages[0].UnixTime)
	assert.Equal(t, 40.5, exchange.Messages[0].Latitude)
	assert.Equal(t, "Checking in", exchange.Messages[1].MessageContent)
}

func TestFetchLatestHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	exchange, err := newTestClient(server.URL).FetchLatest(context.Background())
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 503, httpErr.StatusCode)

	// Сырой обмен доступен для аудита и при ошибке
	assert.Equal(t, 503, exchange.StatusCode)
	assert.NotEmpty(t, exchange.RawRequest)
	assert.NotEmpty(t, exchange.RawResponse)
}

func TestFetchLatestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Сервер уже погашен

	exchange, err := newTestClient(server.URL).FetchLatest(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotEmpty(t, exchange.RawRequest)
}

func TestFetchLatestMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchLatest(context.Background())

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseFeedResponseMissingFieldFailsWholeBatch(t *testing.T) {
	body := `{
		"response": {
			"feedMessageResponse": {
				"messages": {
					"message": [
						{"id": 1, "messageType": "OK", "unixTime": 100, "latitude": 1.0, "longitude": 2.0},
						{"id": 2, "messageType": "OK", "unixTime": 200, "latitude": 1.0}
					]
				}
			}
		}
	}`

	_, err := ParseFeedResponse([]byte(body))
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "longitude")
}

func TestParseFeedResponseEmptyFeed(t *testing.T) {
	body := `{"response": {"feedMessageResponse": {"messages": {"message": []}}}}`

	events, err := ParseFeedResponse([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, events)
}
