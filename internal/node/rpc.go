package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"ceremony/internal/domain"
)

// Request is the JSON-RPC envelope sent to the node.
type Request struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     uint64        `json:"id"`
	Key    string        `json:"key,omitempty"`
}

// Response is the JSON-RPC envelope returned by the node.
type Response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object of a failed call.
type RPCError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// Client talks to a single node.
type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client

	log    logrus.FieldLogger
	nextID atomic.Uint64
}

// New returns a client for url. A nil httpClient means http.DefaultClient and
// a nil log means the logrus standard logger.
func New(url, apiKey string, httpClient *http.Client, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{URL: url, APIKey: apiKey, HTTP: httpClient, log: log}
}

// Call invokes method and decodes the result into out, which may be nil.
func (c *Client) Call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	req := Request{Method: method, Params: params, ID: c.nextID.Add(1), Key: c.APIKey}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(req); err != nil {
		return &domain.NetworkError{Method: method, Err: err}
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, buf)
	if err != nil {
		return &domain.NetworkError{Method: method, Err: err}
	}
	hreq.Header.Set("Content-Type", "application/json")

	c.log.WithFields(logrus.Fields{"method": method, "id": req.ID}).Debug("rpc call")

	resp, err := c.HTTP.Do(hreq)
	if err != nil {
		return &domain.NetworkError{Method: method, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return &domain.NetworkError{Method: method, Err: fmt.Errorf("status %s", resp.Status)}
	}

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return &domain.NetworkError{Method: method, Err: fmt.Errorf("read reply: %w", err)}
	}
	if rpcResp.Error != nil {
		return &domain.ProtocolError{Method: method, Message: rpcResp.Error.Message}
	}
	if out == nil || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return &domain.DecodeError{What: method + " result", Err: err}
	}
	return nil
}
