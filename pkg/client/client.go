package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mrshanahan/keep-notes/internal/utils"
	"github.com/mrshanahan/keep-notes/pkg/notes"
	"github.com/mrshanahan/keep-notes/pkg/views"
)

type Client struct {
	URL string
	// Token, when set, is sent as a bearer token.
	Token      string
	HTTPClient *http.Client
}

func NewClient(url string) *Client {
	return &Client{URL: url, HTTPClient: http.DefaultClient}
}

// Edit mirrors the server's edit request; nil fields are left unchanged.
type Edit struct {
	Title *string `json:"title,omitempty"`
	Text  *string `json:"text,omitempty"`
	Tag   *string `json:"tag,omitempty"`
	Color *string `json:"color,omitempty"`
}

type Tags struct {
	Total int              `json:"total"`
	Tags  []views.TagCount `json:"tags"`
}

type Palette struct {
	Default string   `json:"default"`
	Colors  []string `json:"colors"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid status code: %d (response: %s)", e.StatusCode, e.Body)
}

// Board fetches the board. A nil tag uses the server's selected tag; a
// non-nil tag filters by it without changing the selection.
func (c *Client) Board(tag *string) (*views.Board, error) {
	urlPath := "/notes/"
	var query url.Values
	if tag != nil {
		query = url.Values{"tag": {*tag}}
	}
	board := &views.Board{}
	if err := c.do(http.MethodGet, urlPath, query, nil, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (c *Client) Tags() (*Tags, error) {
	tags := &Tags{}
	if err := c.do(http.MethodGet, "/notes/tags", nil, nil, tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) CreateNote(candidate notes.Candidate) (*notes.Note, error) {
	note := &notes.Note{}
	if err := c.do(http.MethodPost, "/notes/", nil, candidate, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (c *Client) GetNote(id notes.ID) (*notes.Note, error) {
	note := &notes.Note{}
	if err := c.do(http.MethodGet, fmt.Sprintf("/notes/%d", id), nil, nil, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (c *Client) UpdateNote(id notes.ID, edit Edit) (*notes.Note, error) {
	note := &notes.Note{}
	if err := c.do(http.MethodPost, fmt.Sprintf("/notes/%d", id), nil, edit, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote deletes the note, confirming the deletion on the caller's
// behalf.
func (c *Client) DeleteNote(id notes.ID) error {
	query := url.Values{"confirm": {"true"}}
	return c.do(http.MethodDelete, fmt.Sprintf("/notes/%d", id), query, nil, nil)
}

func (c *Client) TogglePin(id notes.ID) (*notes.Note, error) {
	note := &notes.Note{}
	if err := c.do(http.MethodPost, fmt.Sprintf("/notes/%d/pin", id), nil, nil, note); err != nil {
		return nil, err
	}
	return note, nil
}

// SelectTag sets the server's selected tag and returns the resulting board.
// An empty tag clears the selection.
func (c *Client) SelectTag(tag string) (*views.Board, error) {
	board := &views.Board{}
	payload := map[string]string{"tag": tag}
	if err := c.do(http.MethodPut, "/filter/", nil, payload, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (c *Client) Palette() (*Palette, error) {
	palette := &Palette{}
	if err := c.do(http.MethodGet, "/palette/", nil, nil, palette); err != nil {
		return nil, err
	}
	return palette, nil
}

// Private functions

func (c *Client) do(method string, path string, query url.Values, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("error JSON-encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	resp, err := c.invoke(method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, err := validateResponse(resp)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("error JSON-decoding response body: %w", err)
	}
	return nil
}

func (c *Client) invoke(method string, path string, query url.Values, body io.Reader) (*http.Response, error) {
	requestUrl, err := url.JoinPath(c.URL, path)
	if err != nil {
		return nil, fmt.Errorf("error building URL path: %w", err)
	}
	if len(query) > 0 {
		requestUrl += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, requestUrl, body)
	if err != nil {
		return nil, fmt.Errorf("error building API request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error invoking API: %w", err)
	}
	return resp, nil
}

func validateResponse(resp *http.Response) ([]byte, error) {
	respBytes, err := utils.ReadToEnd(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBytes)),
		}
	}

	return respBytes, nil
}
