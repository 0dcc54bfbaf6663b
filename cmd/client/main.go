/*
Package main is a terminal chat client for exercising a pairchat server.

It authenticates with a locally minted identity token, opens a WebSocket,
subscribes to the conversation channel for the chosen partner, and then
reconciles the durable history with the live event stream: live messages
received before the history snapshot arrives are buffered and replayed so
the printed timeline is ordered and duplicate-free. On a dropped connection
it reconnects and reseeds from scratch.
*/
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pairchat/internal/app/broadcast"
	"pairchat/internal/app/convo"
	"pairchat/internal/app/reconcile"
	"pairchat/internal/pkg/auth/jwt"
)

type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	serverURL string
	token     string
	userID    string
	chatID    string
	http      *http.Client

	printMu sync.Mutex
	printed map[string]struct{}
}

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "pairchat server base URL")
		secret    = flag.String("secret", "your_default_insecure_secret_key_change_me", "identity signing secret (must match the server)")
		userID    = flag.String("id", "", "user id")
		name      = flag.String("name", "", "display name")
		email     = flag.String("email", "", "account email")
		partnerID = flag.String("partner", "", "partner user id to chat with")
	)
	flag.Parse()

	if *userID == "" || *name == "" || *email == "" || *partnerID == "" {
		flag.Usage()
		os.Exit(1)
	}

	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:    *userID,
		Name:  *name,
		Email: *email,
	}, *secret, jwt.IdentityExpiration)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}

	c := &client{
		serverURL: strings.TrimRight(*serverURL, "/"),
		token:     token,
		userID:    *userID,
		chatID:    convo.ChatID(*userID, *partnerID),
		http:      &http.Client{Timeout: 10 * time.Second},
		printed:   make(map[string]struct{}),
	}

	fmt.Printf("chatting as %s in %s\n", *userID, c.chatID)

	go c.inputLoop()

	// Each pass is one connection lifetime: subscribe, seed, stream.
	// A dropped connection starts over with a fresh view.
	for {
		if err := c.streamOnce(); err != nil {
			log.Printf("connection lost: %v (reconnecting in 2s)", err)
			time.Sleep(2 * time.Second)
		}
	}
}

// streamOnce opens the WebSocket, subscribes to the conversation channel,
// seeds the view from the history endpoint, and prints events until the
// connection fails.
func (c *client) streamOnce() error {
	wsURL, err := c.websocketURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	channel := broadcast.ConversationChannel(c.chatID)
	subscribe := map[string]string{"type": "subscribe", "channel": channel}
	if err := conn.WriteJSON(subscribe); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	// Subscribe before seeding so no message can fall between the snapshot
	// and the live stream. Anything that arrives early is buffered by the
	// view and replayed after Seed.
	view := reconcile.NewMessageView()

	seeded := make(chan error, 1)
	go func() {
		history, err := c.fetchHistory()
		if err != nil {
			seeded <- err
			return
		}
		view.Seed(history)
		for _, msg := range view.Messages() {
			c.printMessage(msg)
		}
		seeded <- nil
	}()

	for {
		select {
		case err := <-seeded:
			if err != nil {
				return fmt.Errorf("seed history: %w", err)
			}
			seeded = nil
		default:
		}

		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var envelope broadcast.Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			log.Printf("skipping malformed frame: %v", err)
			continue
		}
		if envelope.Event == "error" {
			log.Printf("server error: %s", envelope.Payload)
			continue
		}

		event, err := envelope.Open()
		if err != nil {
			log.Printf("skipping frame: %v", err)
			continue
		}

		if ev, ok := event.(broadcast.NewMessageEvent); ok {
			if view.Apply(ev.Message) {
				c.printMessage(ev.Message)
			}
		}
	}
}

func (c *client) websocketURL() (string, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {c.token}}.Encode()
	return u.String(), nil
}

// fetchHistory loads the full ordered message log for the conversation.
func (c *client) fetchHistory() ([]convo.Message, error) {
	endpoint := fmt.Sprintf("%s/api/chats/%s/messages", c.serverURL, c.chatID)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	envelope, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("server: %s", envelope.Message)
	}

	var data struct {
		Messages []convo.Message `json:"messages"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, err
	}
	return data.Messages, nil
}

// inputLoop reads stdin lines and posts each one as a message.
func (c *client) inputLoop() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := c.sendMessage(text); err != nil {
			log.Printf("send failed: %v", err)
		}
	}
}

func (c *client) sendMessage(text string) error {
	endpoint := fmt.Sprintf("%s/api/chats/%s/messages", c.serverURL, c.chatID)

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	envelope, err := decodeEnvelope(resp.Body)
	if err != nil {
		return err
	}
	if envelope.Code != 0 {
		return fmt.Errorf("server: %s", envelope.Message)
	}
	return nil
}

// printMessage writes the message once, keyed by id. The seed goroutine and
// the live loop may both hand over the same message.
func (c *client) printMessage(msg convo.Message) {
	c.printMu.Lock()
	if _, dup := c.printed[msg.ID]; dup {
		c.printMu.Unlock()
		return
	}
	c.printed[msg.ID] = struct{}{}
	c.printMu.Unlock()

	who := msg.SenderID
	if who == c.userID {
		who = "me"
	}
	ts := time.UnixMilli(msg.Timestamp).Format("15:04:05")
	fmt.Printf("[%s] %s: %s\n", ts, who, msg.Text)
}

func decodeEnvelope(r io.Reader) (*apiEnvelope, error) {
	var envelope apiEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &envelope, nil
}
