// Package zoomsvc schedules Zoom meetings over the server-to-server
// OAuth API.
package zoomsvc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/session"
)

var (
	apiBaseURL   = "https://api.zoom.us/v2"
	tokenURL     = "https://zoom.us/oauth/token"
	tokenPadding = 30 * time.Second // refresh slightly before expiry
)

type client struct {
	accountID    string
	clientID     string
	clientSecret string
	http         *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

var _ session.Scheduler = (*client)(nil)

func NewClient(conf *core.Config) *client {
	return &client{
		accountID:    conf.Zoom.AccountID,
		clientID:     conf.Zoom.ClientID,
		clientSecret: conf.Zoom.ClientSecret,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenPadding)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", c.accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "building zoom token request")
	}
	creds := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+creds)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "requesting zoom token")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("requesting zoom token - status: %d", res.StatusCode)
	}

	var tok tokenResponse
	if err = json.NewDecoder(res.Body).Decode(&tok); err != nil {
		return "", errors.Wrap(err, "decoding zoom token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

type (
	meetingRequest struct {
		Topic     string `json:"topic"`
		Type      int    `json:"type"` // 2 = scheduled
		StartTime string `json:"start_time"`
		Duration  int    `json:"duration"` // minutes
		Timezone  string `json:"timezone"`
	}

	meetingResponse struct {
		ID      int64  `json:"id"`
		JoinURL string `json:"join_url"`
	}
)

func (c *client) Schedule(ctx context.Context, topic string, start time.Time, duration time.Duration) (session.Meeting, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return session.Meeting{}, err
	}

	payload, err := json.Marshal(meetingRequest{
		Topic:     topic,
		Type:      2,
		StartTime: start.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  int(duration.Minutes()),
		Timezone:  "UTC",
	})
	if err != nil {
		return session.Meeting{}, errors.Wrap(err, "encoding zoom meeting")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL+"/users/me/meetings", bytes.NewReader(payload))
	if err != nil {
		return session.Meeting{}, errors.Wrap(err, "building zoom meeting request")
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return session.Meeting{}, errors.Wrap(err, "creating zoom meeting")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusCreated {
		return session.Meeting{}, errors.Errorf("creating zoom meeting - status: %d", res.StatusCode)
	}

	var m meetingResponse
	if err = json.NewDecoder(res.Body).Decode(&m); err != nil {
		return session.Meeting{}, errors.Wrap(err, "decoding zoom meeting")
	}
	return session.Meeting{ID: strconv.FormatInt(m.ID, 10), JoinURL: m.JoinURL}, nil
}

type staticScheduler struct {
	mu   sync.Mutex
	next int
}

// NewStaticScheduler returns a scheduler for local dev and tests; it hands
// out deterministic meeting IDs without calling Zoom.
func NewStaticScheduler() *staticScheduler {
	return &staticScheduler{}
}

var _ session.Scheduler = (*staticScheduler)(nil)

func (s *staticScheduler) Schedule(ctx context.Context, topic string, start time.Time, duration time.Duration) (session.Meeting, error) {
	s.mu.Lock()
	s.next++
	n := s.next
	s.mu.Unlock()

	id := fmt.Sprintf("%09d", 850000000+n)
	return session.Meeting{ID: id, JoinURL: "https://zoom.us/j/" + id}, nil
}
