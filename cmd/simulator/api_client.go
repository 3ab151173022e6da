package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

type Conversation struct {
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name"`
	UserRole    string  `json:"user_role"`
	LastMessage *string `json:"last_message"`
	UnreadCount int64   `json:"unread_count"`
}

type Message struct {
	ID       string `json:"id"`
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

type Bitacora struct {
	ID        string  `json:"id"`
	DayNumber int     `json:"day_number"`
	Date      string  `json:"date"`
	AISummary *string `json:"ai_summary"`
}

// RegisterUser creates a new account. An empty email generates a unique one.
func (c *APIClient) RegisterUser(name, email, password string) (*User, string, error) {
	if email == "" {
		email = fmt.Sprintf("sim_%d@mamarespira.test", time.Now().UnixNano())
	}

	var result AuthResponse
	err := c.do(http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, "", &result)
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}
	return &result.User, result.AccessToken, nil
}

func (c *APIClient) Login(email, password string) (*User, string, error) {
	var result AuthResponse
	err := c.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "", &result)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	return &result.User, result.AccessToken, nil
}

func (c *APIClient) UpgradePremium(token string) error {
	return c.do(http.MethodPost, "/auth/upgrade-premium", nil, token, nil)
}

// CoachID returns the coach's user id; the endpoint is public.
func (c *APIClient) CoachID() (string, error) {
	var result struct {
		CoachID string `json:"coach_id"`
	}
	if err := c.do(http.MethodGet, "/messages/coach-id", nil, "", &result); err != nil {
		return "", fmt.Errorf("coach id: %w", err)
	}
	return result.CoachID, nil
}

func (c *APIClient) SendMessage(token, receiverID, content string) (*Message, error) {
	var msg Message
	err := c.do(http.MethodPost, "/messages", map[string]string{
		"receiver_id": receiverID,
		"content":     content,
	}, token, &msg)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &msg, nil
}

// Conversation fetches a thread, which marks the other side's messages read.
func (c *APIClient) Conversation(token, otherUserID string) ([]Message, error) {
	var msgs []Message
	if err := c.do(http.MethodGet, "/messages/conversation/"+otherUserID, nil, token, &msgs); err != nil {
		return nil, fmt.Errorf("conversation: %w", err)
	}
	return msgs, nil
}

func (c *APIClient) Clients(token string) ([]Conversation, error) {
	var convs []Conversation
	if err := c.do(http.MethodGet, "/coach/clients", nil, token, &convs); err != nil {
		return nil, fmt.Errorf("clients: %w", err)
	}
	return convs, nil
}

func (c *APIClient) CreateBitacora(token string, entry map[string]any) (*Bitacora, error) {
	var b Bitacora
	if err := c.do(http.MethodPost, "/bitacora", entry, token, &b); err != nil {
		return nil, fmt.Errorf("create bitacora: %w", err)
	}
	return &b, nil
}

// do sends a JSON request and decodes a 200 response into out when set.
func (c *APIClient) do(method, path string, body interface{}, token string, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var detail struct {
			Detail string `json:"detail"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, detail.Detail)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
