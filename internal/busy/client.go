package busy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client — HTTP-клиент провайдера внешних календарей.
// Сырые JSON-ответы провайдера разбираются жадно, прямо на границе:
// дальше ядра уходят только типизированные интервалы.
type Client struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
}

// NewClient создаёт клиента. timeout ограничивает каждый отдельный
// вызов; нулевое значение отключает ограничение.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{},
		timeout: timeout,
	}
}

type freeBusyRequest struct {
	CredentialRef string    `json:"credential_ref"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
}

type freeBusyResponse struct {
	Busy []struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"busy"`
}

// GetBusyIntervals запрашивает занятость сотрудника в окне [from, to).
func (c *Client) GetBusyIntervals(
	ctx context.Context,
	credentialRef string,
	from, to time.Time,
) ([]Interval, error) {
	var resp freeBusyResponse
	if err := c.post(ctx, "/v1/freebusy", freeBusyRequest{
		CredentialRef: credentialRef,
		From:          from,
		To:            to,
	}, &resp); err != nil {
		return nil, err
	}

	intervals := make([]Interval, 0, len(resp.Busy))
	for _, raw := range resp.Busy {
		start, err := time.Parse(time.RFC3339, raw.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: start %q: %v", ErrBadPayload, raw.Start, err)
		}
		end, err := time.Parse(time.RFC3339, raw.End)
		if err != nil {
			return nil, fmt.Errorf("%w: end %q: %v", ErrBadPayload, raw.End, err)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("%w: empty interval %q..%q", ErrBadPayload, raw.Start, raw.End)
		}
		intervals = append(intervals, Interval{Start: start, End: end})
	}
	return intervals, nil
}

type createEventRequest struct {
	CredentialRef string    `json:"credential_ref"`
	Description   string    `json:"description"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

type createEventResponse struct {
	ID string `json:"id"`
}

// CreateEvent создаёт событие во внешнем календаре сотрудника и
// возвращает идентификатор события у провайдера.
func (c *Client) CreateEvent(
	ctx context.Context,
	credentialRef, description string,
	start, end time.Time,
) (string, error) {
	var resp createEventResponse
	if err := c.post(ctx, "/v1/events", createEventRequest{
		CredentialRef: credentialRef,
		Description:   description,
		Start:         start,
		End:           end,
	}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: empty event id", ErrBadPayload)
	}
	return resp.ID, nil
}

// DeleteEvent удаляет ранее созданное событие у провайдера.
func (c *Client) DeleteEvent(ctx context.Context, credentialRef, eventRef string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL + "/v1/events/" + url.PathEscape(eventRef) +
		"?credential_ref=" + url.QueryEscape(credentialRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
