// Package client is the HTTP implementation of engine.API against the
// SmartStart acceptance endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartstart-backend/engine"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type requiredDocument struct {
	ID         uint       `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	IsRequired bool       `json:"isRequired"`
	Version    string     `json:"version"`
	IsSigned   bool       `json:"isSigned"`
	SignedAt   *time.Time `json:"signedAt"`
}

type signRequest struct {
	DocumentID    uint            `json:"documentId"`
	SignatureData signRequestData `json:"signatureData"`
}

type signRequestData struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	SignedAt time.Time `json:"signedAt"`
}

type signResponse struct {
	SignatureID uint   `json:"signatureId"`
	Error       string `json:"error"`
}

func (c *Client) FetchRequired(ctx context.Context) ([]engine.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/legal/required", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, engine.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch required documents: unexpected status %d", resp.StatusCode)
	}

	var raw []requiredDocument
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	docs := make([]engine.Document, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, engine.Document{
			ID:       d.ID,
			Title:    d.Title,
			Content:  d.Content,
			Version:  d.Version,
			IsSigned: d.IsSigned,
			SignedAt: d.SignedAt,
		})
	}
	return docs, nil
}

func (c *Client) Sign(ctx context.Context, documentID uint, data engine.SignatureData) (engine.SignResult, error) {
	body, err := json.Marshal(signRequest{
		DocumentID: documentID,
		SignatureData: signRequestData{
			Name:     data.Name,
			Email:    data.Email,
			SignedAt: data.SignedAt,
		},
	})
	if err != nil {
		return engine.SignResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/legal/sign", bytes.NewReader(body))
	if err != nil {
		return engine.SignResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return engine.SignResult{}, err
	}
	defer resp.Body.Close()

	var out signResponse
	payload, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(payload, &out)

	switch resp.StatusCode {
	case http.StatusCreated:
		return engine.SignResult{SignatureID: out.SignatureID}, nil
	case http.StatusBadRequest:
		if out.Error == "already_signed" {
			return engine.SignResult{}, engine.ErrAlreadySigned
		}
		return engine.SignResult{}, fmt.Errorf("sign rejected: %s", out.Error)
	case http.StatusNotFound:
		return engine.SignResult{}, engine.ErrDocumentNotFound
	case http.StatusUnauthorized:
		return engine.SignResult{}, engine.ErrUnauthorized
	default:
		return engine.SignResult{}, fmt.Errorf("sign document: unexpected status %d", resp.StatusCode)
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
