package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/broadcast"
	"pairchat/internal/app/chat"
	"pairchat/internal/app/convo"
	"pairchat/internal/app/friend"
	"pairchat/internal/app/store"
	"pairchat/internal/app/user"
	"pairchat/internal/configs"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
)

const testSecret = "test-secret"

type nullBroadcaster struct{}

func (nullBroadcaster) Publish(ctx context.Context, channel string, event broadcast.Event) error {
	return nil
}

// stubStorage satisfies storage.AvatarStorage without talking to S3.
type stubStorage struct {
	metadata map[string]map[string]string
}

func (s *stubStorage) PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error) {
	return "https://storage.test/upload/" + key, nil
}

func (s *stubStorage) PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error) {
	return "https://storage.test/download/" + key, nil
}

func (s *stubStorage) Delete(ctx context.Context, key string) error {
	delete(s.metadata, key)
	return nil
}

func (s *stubStorage) Metadata(ctx context.Context, key string) (map[string]string, error) {
	meta, ok := s.metadata[key]
	if !ok {
		return nil, fmt.Errorf("file not found")
	}
	return meta, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubStorage) {
	t.Helper()

	mem := store.NewMemory()
	users := user.NewDirectory(mem)
	bcast := nullBroadcaster{}
	graph := friend.NewGraph(mem, users, bcast)
	log := convo.NewLog(mem)
	chats := chat.NewService(log, graph, bcast, func(ctx context.Context, userID string) (string, error) {
		record, customErr := users.ByID(ctx, userID)
		if customErr != nil {
			return "", customErr
		}
		return record.Name, nil
	})
	avatars := &stubStorage{metadata: make(map[string]map[string]string)}

	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			JWTSecret:   testSecret,
		},
		Users:   users,
		Graph:   graph,
		Chats:   chats,
		Avatars: avatars,
	}

	server := httptest.NewServer(Router(deps))
	t.Cleanup(server.Close)
	return server, avatars
}

func mintToken(t *testing.T, id, name, email string) string {
	t.Helper()

	token, err := jwt.GenerateToken(&jwt.Payload{ID: id, Name: name, Email: email}, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	fields := map[string]json.RawMessage{}
	if len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, &fields))
	}
	fields["__code"] = json.RawMessage(fmt.Sprintf("%d", envelope.Code))
	return resp, fields
}

func bodyCode(fields map[string]json.RawMessage) int {
	var code int
	json.Unmarshal(fields["__code"], &code)
	return code
}

func TestRouterAuth(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("anonymous callers get 401", func(t *testing.T) {
		resp, fields := doJSON(t, http.MethodGet, server.URL+"/api/friends/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, errs.ErrUnauthorized, bodyCode(fields))
	})

	t.Run("garbage token is treated as anonymous", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/friends/", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("health check needs no identity", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestFriendFlowOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)

	aliceToken := mintToken(t, "alice", "Alice", "alice@example.com")
	bobToken := mintToken(t, "bob", "Bob", "bob@example.com")

	// First authenticated contact provisions each account.
	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/friends/", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("request by email", func(t *testing.T) {
		resp, fields := doJSON(t, http.MethodPost, server.URL+"/api/friends/request", aliceToken,
			map[string]string{"email": "bob@example.com"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var targetID string
		require.NoError(t, json.Unmarshal(fields["targetId"], &targetID))
		assert.Equal(t, "bob", targetID)
	})

	t.Run("request shows up for the target", func(t *testing.T) {
		resp, fields := doJSON(t, http.MethodGet, server.URL+"/api/friends/requests", bobToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var requests []user.User
		require.NoError(t, json.Unmarshal(fields["requests"], &requests))
		require.Len(t, requests, 1)
		assert.Equal(t, "alice", requests[0].ID)
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		resp, fields := doJSON(t, http.MethodPost, server.URL+"/api/friends/request", aliceToken,
			map[string]string{"email": "not an email"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errs.ErrInvalidParams, bodyCode(fields))
	})

	t.Run("accept establishes the friendship", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/friends/accept", bobToken,
			map[string]string{"senderId": "alice"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, fields := doJSON(t, http.MethodGet, server.URL+"/api/friends/", aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var friends []user.User
		require.NoError(t, json.Unmarshal(fields["friends"], &friends))
		require.Len(t, friends, 1)
		assert.Equal(t, "bob", friends[0].ID)
	})
}

func TestChatFlowOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)

	aliceToken := mintToken(t, "alice", "Alice", "alice@example.com")
	bobToken := mintToken(t, "bob", "Bob", "bob@example.com")
	chatID := convo.ChatID("alice", "bob")

	// Provision both accounts and make them friends.
	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/friends/", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/friends/request", aliceToken,
		map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/friends/accept", bobToken,
		map[string]string{"senderId": "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	messagesURL := fmt.Sprintf("%s/api/chats/%s/messages", server.URL, chatID)

	t.Run("send and read back", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, messagesURL, aliceToken, map[string]string{"text": "hello bob"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, fields := doJSON(t, http.MethodGet, messagesURL, bobToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var messages []convo.Message
		require.NoError(t, json.Unmarshal(fields["messages"], &messages))
		require.Len(t, messages, 1)
		assert.Equal(t, "hello bob", messages[0].Text)
		assert.Equal(t, "alice", messages[0].SenderID)
	})

	t.Run("outsiders cannot read the conversation", func(t *testing.T) {
		malloryToken := mintToken(t, "mallory", "Mallory", "mallory@example.com")

		resp, fields := doJSON(t, http.MethodGet, messagesURL, malloryToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, errs.ErrNotParticipant, bodyCode(fields))
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		resp, fields := doJSON(t, http.MethodPost, messagesURL, aliceToken, map[string]string{"text": ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errs.ErrEmptyMessage, bodyCode(fields))
	})
}

func TestAvatarFlowOverHTTP(t *testing.T) {
	server, storage := newTestServer(t)
	aliceToken := mintToken(t, "alice", "Alice", "alice@example.com")

	t.Run("presign validates type and size", func(t *testing.T) {
		resp, fields := doJSON(t, http.MethodPost, server.URL+"/api/user/avatar/presign", aliceToken,
			map[string]any{"mimeType": "application/zip", "fileSize": 1024})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errs.ErrFileTypeInvalid, bodyCode(fields))

		resp, fields = doJSON(t, http.MethodPost, server.URL+"/api/user/avatar/presign", aliceToken,
			map[string]any{"mimeType": "image/png", "fileSize": maxAvatarSizeBytes + 1})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errs.ErrFileSizeTooLarge, bodyCode(fields))
	})

	t.Run("presign then confirm", func(t *testing.T) {
		resp, fields := doJSON(t, http.MethodPost, server.URL+"/api/user/avatar/presign", aliceToken,
			map[string]any{"mimeType": "image/png", "fileSize": 1024})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var key string
		require.NoError(t, json.Unmarshal(fields["key"], &key))
		assert.Contains(t, key, "avatars/alice/")

		// Simulate the completed upload.
		storage.metadata[key] = map[string]string{"Content-Type": "image/png", "Content-Length": "1024"}

		resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/user/avatar/confirm", aliceToken,
			map[string]string{"key": key})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, fields = doJSON(t, http.MethodGet, server.URL+"/api/user/me", aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var avatarURL string
		require.NoError(t, json.Unmarshal(fields["avatarUrl"], &avatarURL))
		assert.Equal(t, "https://storage.test/download/"+key, avatarURL)
	})

	t.Run("cannot claim another user's key", func(t *testing.T) {
		resp, fields := doJSON(t, http.MethodPost, server.URL+"/api/user/avatar/confirm", aliceToken,
			map[string]string{"key": "avatars/bob/stolen.png"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errs.ErrAvatarKeyInvalid, bodyCode(fields))
	})
}
